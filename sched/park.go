package sched

import (
	"github.com/jwarrior319/skyline/config"
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// ParkThread removes h from scheduling entirely when no core currently
// admits it (spec.md §4.7). It first looks for any affinity-admissible
// core that is either empty or headed by a strictly lower-priority
// thread; failing that, h waits on the parked queue until
// WakeParkedThread claims a core on its behalf.
func (s *Scheduler) ParkThread(h *thread.Handle) {
	h.CoreMigrationMutex.Lock()
	s.RemoveThread(h)

	var chosen *CoreContext
	for _, c := range s.cores {
		if !h.AffinityMask.Test(c.ID) {
			continue
		}
		if coreAdmits(c, h) {
			chosen = c
			break
		}
	}

	if chosen != nil {
		h.CoreID = chosen.ID
		h.CoreMigrationMutex.Unlock()
		debug.DPrintf(debug.PARK, "%v finds admissible C%d, skips park", h, chosen.ID)
		s.InsertThread(h, h)
		return
	}

	h.CoreID = config.ParkedCoreId
	h.CoreMigrationMutex.Unlock()

	s.parkedMu.Lock()
	h.Rebind(&s.parkedMu)
	s.parked = s.parked.insertAt(s.parked.upperBound(h.Priority()), h)
	s.Counters.Parks.Add(1)
	debug.DPrintf(debug.PARK, "%v parked", h)

	for !(s.parked.front() == h && h.CoreID != config.ParkedCoreId) {
		h.Wait()
	}
	s.parked = s.parked.removeAt(s.parked.indexOf(h))
	s.parkedMu.Unlock()

	debug.DPrintf(debug.PARK, "%v unparked onto C%d", h, h.CoreID)
	s.InsertThread(h, h)
}

func coreAdmits(c *CoreContext, h *thread.Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	head := c.queue.front()
	return head == nil || thread.IsHigherPriority(h.Priority(), head.Priority())
}

// WakeParkedThread lets caller, which has just advanced (rotated,
// removed itself, or otherwise exposed a new "next thread" on its
// core), hand its core to the parked head when the parked head's
// affinity mask admits that core and it deserves to run sooner
// (spec.md §4.7). Rotate and RemoveThread both
// call this on caller's behalf after they release the core mutex, so a
// parked thread's eventual claim doesn't depend on some other caller
// remembering to invoke it. Acquires the parked mutex before the core
// mutex, per the package's lock order.
func (s *Scheduler) WakeParkedThread(caller *thread.Handle) {
	s.parkedMu.Lock()
	defer s.parkedMu.Unlock()

	parkedHead := s.parked.front()
	if parkedHead == nil || !parkedHead.AffinityMask.Test(caller.CoreID) {
		return
	}

	core := s.coreOf(caller)
	core.mu.Lock()
	defer core.mu.Unlock()

	var nextSamePriority bool
	var nextStart uint64
	if len(core.queue) > 1 {
		next := core.queue[1]
		nextSamePriority = next.Priority() == caller.Priority()
		nextStart = next.TimesliceStart
	}

	claim := thread.IsHigherPriority(parkedHead.Priority(), caller.Priority()) ||
		(parkedHead.Priority() == caller.Priority() &&
			(!nextSamePriority || parkedHead.TimesliceStart < nextStart))
	if !claim {
		return
	}

	parkedHead.CoreID = caller.CoreID
	debug.DPrintf(debug.PARK, "%v claims C%d from %v", parkedHead, caller.CoreID, caller)
	parkedHead.Notify()
}
