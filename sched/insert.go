package sched

import (
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// InsertThread admits h onto the core named by h.CoreID (spec.md §4.2).
// caller identifies the thread currently executing this call; pass h
// itself for a self-admission (e.g. from LoadBalance or ParkThread's
// re-entry), or nil/a distinct handle for an external admission (e.g. a
// spawn path or a peer's deferred dethrone).
//
// Preconditions: the calling goroutine holds no core mutex, and
// h.CoreID already names the destination core.
func (s *Scheduler) InsertThread(h, caller *thread.Handle) {
	core := s.coreOf(h)
	core.mu.Lock()
	defer core.mu.Unlock()
	s.insertThreadL(core, h, caller)
}

// insertThreadL is InsertThread with core.mu already held.
func (s *Scheduler) insertThreadL(core *CoreContext, h, caller *thread.Handle) {
	h.Rebind(&core.mu)

	idx := core.queue.upperBound(h.Priority())
	if idx == 0 {
		if len(core.queue) == 0 {
			// (a) empty queue: h becomes head uncontested.
			core.queue = core.queue.insertAt(0, h)
			debug.DPrintf(debug.INSERT, "%v -> C%d head (empty)", h, core.ID)
		} else {
			// (b) h dethrones the current head.
			selfInsert := caller == h
			if selfInsert {
				oldHead := core.queue.front()
				oldHead.ForceYield = true
				core.queue = core.queue.moveToUpperBound(0)
				core.queue = core.queue.insertAt(0, h)
				debug.DPrintf(debug.INSERT, "%v self-inserts, dethrones %v (self-yield)", h, oldHead)
			} else {
				core.queue = core.queue.insertAt(1, h)
				debug.DPrintf(debug.INSERT, "%v dethrones %v on C%d (deferred)", h, core.queue[0], core.ID)
			}

			newHead := core.queue.front()
			if caller != newHead {
				if err := newHead.SendSignal(thread.YieldSignal); err != nil {
					debug.DPrintf(debug.ERROR, "SendSignal to %v: %v", newHead, err)
				}
			} else {
				newHead.YieldPending.Store(true)
			}
		}
		if h != caller {
			h.Notify()
		}
	} else {
		// (c) h lands strictly behind the head: no signal, no notify.
		core.queue = core.queue.insertAt(idx, h)
		debug.DPrintf(debug.INSERT, "%v -> C%d position %d", h, core.ID, idx)
	}
}
