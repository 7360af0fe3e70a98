package sched

import (
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// UpdatePriority changes h's priority and repositions it within its
// core's queue if currently scheduled (spec.md §4.5). The source this
// was ported from guards the head case with two successive
// "at the front" checks, the second dead after the first's early
// return; this collapses that into the two cases it was clearly meant
// to express — head and non-head.
func (s *Scheduler) UpdatePriority(h *thread.Handle, newPriority int8) error {
	h.CoreMigrationMutex.Lock()
	defer h.CoreMigrationMutex.Unlock()

	core := s.coreOf(h)
	core.mu.Lock()
	defer core.mu.Unlock()

	idx := core.queue.indexOf(h)
	if idx == -1 {
		// Not currently scheduled; the next InsertThread picks up the
		// new value.
		debug.DPrintf(debug.PRIORITY, "%v -> prio=%d (not queued)", h, newPriority)
		h.SetPriority(newPriority)
		return nil
	}
	debug.DPrintf(debug.PRIORITY, "%v prio=%d -> %d", h, h.Priority(), newPriority)

	if idx == 0 {
		h.SetPriority(newPriority)
		if len(core.queue) > 1 && thread.IsHigherPriority(core.queue[1].Priority(), newPriority) {
			if err := h.SendSignal(thread.YieldSignal); err != nil {
				debug.DPrintf(debug.ERROR, "%v UpdatePriority self-signal: %v", h, err)
			}
		} else if newPriority == core.PreemptionPriority && !h.IsPreempted {
			h.IsPreempted = true
			h.PreemptionTimer.Arm(s.cfg.PreemptiveTimeslice.Duration(), func() {
				s.handlePreemptionFire(h)
			})
		}
		return nil
	}

	without := core.queue.removeAt(idx)
	target := without.upperBound(newPriority)
	if target == idx {
		// Same slot: priority changes but the ordering doesn't.
		h.SetPriority(newPriority)
		core.queue = without.insertAt(target, h)
		return nil
	}

	h.SetPriority(newPriority)
	wasArmed := h.IsPreempted

	if target == 0 {
		// Would dethrone the head; defer rather than apply the
		// self-yield optimization, since the caller here need not be
		// the thread being repositioned.
		core.queue = without.insertAt(1, h)
		oldHead := core.queue[0]
		if err := oldHead.SendSignal(thread.YieldSignal); err != nil {
			debug.DPrintf(debug.ERROR, "%v UpdatePriority deferred dethrone of %v: %v", h, oldHead, err)
		}
	} else {
		core.queue = without.insertAt(target, h)
	}

	if wasArmed && newPriority != core.PreemptionPriority {
		h.PreemptionTimer.Disarm()
		h.IsPreempted = false
	}
	return nil
}
