package sched

import (
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// RemoveThread erases h from its current core's queue (spec.md §4.9).
// A no-op if h isn't currently on that core. If removing h exposes a new
// head, or empties the core outright, the parked queue gets a chance to
// reclaim the core.
func (s *Scheduler) RemoveThread(h *thread.Handle) {
	core := s.coreOf(h)
	core.mu.Lock()
	newHead, vacated := s.removeThreadL(core, h)
	core.mu.Unlock()

	switch {
	case newHead != nil:
		s.WakeParkedThread(newHead)
	case vacated:
		s.claimVacatedCore(core)
	}
}

func (s *Scheduler) removeThreadL(core *CoreContext, h *thread.Handle) (newHead *thread.Handle, vacated bool) {
	idx := core.queue.indexOf(h)
	if idx == -1 {
		return nil, false
	}
	wasHead := idx == 0
	core.queue = core.queue.removeAt(idx)

	if wasHead {
		if h.TimesliceStart != 0 {
			s.applyTimesliceL(h)
		}
		newHead = core.queue.front()
		if newHead != nil {
			newHead.Notify()
		} else {
			vacated = true
		}
	}

	if h.IsPreempted {
		h.PreemptionTimer.Disarm()
		h.IsPreempted = false
	}
	h.YieldPending.Store(false)
	debug.DPrintf(debug.REMOVE, "%v removed from C%d", h, core.ID)
	return newHead, vacated
}

// claimVacatedCore hands core directly to the highest-priority parked
// thread when RemoveThread leaves it with no occupant at all. There is
// no remaining thread on core to drive WakeParkedThread's priority
// comparison against, so the parked head may claim the core outright if
// its affinity mask admits it — the same "empty core admits anyone" rule
// coreAdmits applies to admissible cores when ParkThread looks for
// somewhere to land.
func (s *Scheduler) claimVacatedCore(core *CoreContext) {
	s.parkedMu.Lock()
	defer s.parkedMu.Unlock()

	parkedHead := s.parked.front()
	if parkedHead == nil || !parkedHead.AffinityMask.Test(core.ID) {
		return
	}
	parkedHead.CoreID = core.ID
	debug.DPrintf(debug.PARK, "%v claims vacated C%d", parkedHead, core.ID)
	parkedHead.Notify()
}
