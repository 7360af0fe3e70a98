package sched

import (
	"time"

	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// WaitSchedule blocks h until it is the head of its core's queue
// (spec.md §4.4). If loadBalance is set and h admits more than one
// core, the wait is chunked: every 2·PreemptiveTimeslice of unscheduled
// time, h releases its core mutex and asks LoadBalance to look for a
// better core, doubling the window on each subsequent attempt.
func (s *Scheduler) WaitSchedule(h *thread.Handle, loadBalance bool) {
	multiAffine := loadBalance && h.AffinityMask.Count() > 1
	backoff := s.cfg.PreemptiveTimeslice.Duration() * 2

	for {
		core := s.coreOf(h)
		core.mu.Lock()

		if multiAffine {
			deadline := time.Now().Add(backoff)
			for core.queue.front() != h && time.Now().Before(deadline) {
				waitUntilOrTimeout(h, deadline)
			}
		} else {
			for core.queue.front() != h {
				h.Wait()
			}
		}

		if core.queue.front() == h {
			s.onBecomeHeadL(core, h)
			core.mu.Unlock()
			return
		}
		core.mu.Unlock()

		debug.DPrintf(debug.WAIT, "%v backoff window elapsed, load-balancing", h)
		if err := s.LoadBalance(h, h, false); err != nil {
			debug.DPrintf(debug.ERROR, "%v LoadBalance during wait: %v", h, err)
		}
		backoff *= 2
	}
}

// TimedWaitSchedule is WaitSchedule bounded by timeout and without load
// balancing; it reports whether h acquired headship before the deadline.
func (s *Scheduler) TimedWaitSchedule(h *thread.Handle, timeout time.Duration) bool {
	core := s.coreOf(h)
	core.mu.Lock()
	defer core.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for core.queue.front() != h {
		if !time.Now().Before(deadline) {
			return false
		}
		waitUntilOrTimeout(h, deadline)
	}
	s.onBecomeHeadL(core, h)
	return true
}

// onBecomeHeadL records h's timeslice start and, if its priority falls
// in its core's preemption band, arms the one-shot preemption timer.
// Must be called with core.mu held and core.queue.front() == h.
func (s *Scheduler) onBecomeHeadL(core *CoreContext, h *thread.Handle) {
	h.TimesliceStart = s.now()
	if h.Priority() == core.PreemptionPriority {
		h.IsPreempted = true
		h.PreemptionTimer.Arm(s.cfg.PreemptiveTimeslice.Duration(), func() {
			s.handlePreemptionFire(h)
		})
	}
}

// handlePreemptionFire is the preemption timer's fire callback: it
// raises YieldSignal on h's bound OS thread, the same delivery path an
// explicit peer-driven SendSignal uses.
func (s *Scheduler) handlePreemptionFire(h *thread.Handle) {
	s.Counters.Preemptions.Add(1)
	if err := h.SendSignal(thread.YieldSignal); err != nil {
		debug.DPrintf(debug.ERROR, "%v preemption timer SendSignal: %v", h, err)
	}
}

// waitUntilOrTimeout blocks h on its wake condition until either
// notified or deadline passes, whichever comes first. Must be called
// with the owning core's mutex held (the same contract as Handle.Wait).
func waitUntilOrTimeout(h *thread.Handle, deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	timer := time.AfterFunc(d, h.Notify)
	defer timer.Stop()
	h.Wait()
}
