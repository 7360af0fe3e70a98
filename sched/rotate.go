package sched

import (
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// Rotate is the current thread's cooperative yield or, when fired from
// the signal handler shim, its preemption path (spec.md §4.3). On
// success it gives the core's parked queue a chance to reclaim the
// core, the same way RemoveThread does.
func (s *Scheduler) Rotate(h *thread.Handle, cooperative bool) error {
	core := s.coreOf(h)
	core.mu.Lock()
	newHead, err := s.rotateL(core, h, cooperative)
	core.mu.Unlock()
	if err == nil {
		s.WakeParkedThread(newHead)
	}
	return err
}

func (s *Scheduler) rotateL(core *CoreContext, h *thread.Handle, cooperative bool) (*thread.Handle, error) {
	defer func() { h.ForceYield = false }()

	idx := core.queue.indexOf(h)
	switch {
	case idx == 0:
		// Normal path: h is head, round-robin it within its own
		// priority band.
		s.applyTimesliceL(h)
		core.queue = core.queue.moveToUpperBound(0)
		newHead := core.queue.front()
		if newHead != h {
			newHead.Notify()
		}
		s.disarmIfCooperative(h, cooperative)
		s.Counters.Rotates.Add(1)
		return newHead, nil

	case idx > 0:
		// Force-yield path: legitimate only when a peer already
		// repositioned h within its priority band via InsertThread's
		// self-yield optimization (§4.2), which marks it ForceYield.
		// Anything else at a non-head position is the same
		// invalid state scheduler.cpp's `else if (thread->forceYield)
		// {...} else { throw }` rejects.
		if !h.ForceYield {
			debug.DPrintf(debug.ERROR, "%v Rotate: not head and not force-yielded on C%d's queue", h, core.ID)
			return nil, ErrInvalidSchedulerState
		}
		s.applyTimesliceL(h)
		s.disarmIfCooperative(h, cooperative)
		s.Counters.Rotates.Add(1)
		return core.queue.front(), nil

	default:
		debug.DPrintf(debug.ERROR, "%v Rotate: not present on C%d's queue", h, core.ID)
		return nil, ErrInvalidSchedulerState
	}
}

// applyTimesliceL updates h's EWMA average timeslice in place. The
// arithmetic deliberately reproduces `avg/4 + 3*(now - start/4)` rather
// than the textbook `avg/4 + 3*(now-start)/4` — flagged during review as
// possibly a transcription bug in the source this was ported from, but
// preserved rather than silently changing guest-visible scheduling
// behavior. See DESIGN.md.
func (s *Scheduler) applyTimesliceL(h *thread.Handle) {
	now := s.now()
	h.AverageTimeslice = h.AverageTimeslice/4 + 3*(now-h.TimesliceStart/4)
}

func (s *Scheduler) disarmIfCooperative(h *thread.Handle, cooperative bool) {
	if cooperative && h.IsPreempted {
		h.PreemptionTimer.Disarm()
		h.IsPreempted = false
	}
}
