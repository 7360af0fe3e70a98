// Package sched implements the guest-thread scheduler: per-core
// fixed-priority ready queues, cross-core load balancing, parking, and
// signal-driven preemption.
//
// Lock order, enforced by convention:
//  1. thread.Handle.CoreMigrationMutex before any core mutex.
//  2. The parked mutex may be taken before a core mutex, never after.
//  3. At most one core mutex is held at a time.
package sched

import (
	"sync"

	"github.com/jwarrior319/skyline/config"
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/hostsignal"
	"github.com/jwarrior319/skyline/thread"
)

// Scheduler is the top-level object owning all virtual cores and the
// parked queue.
type Scheduler struct {
	cfg   *config.Config
	clock Clock
	cores []*CoreContext

	parkedMu sync.Mutex
	parked   orderedQueue

	Counters Counters
}

// New builds a Scheduler with cfg.NumCores cores, each core's
// preemption-priority band taken from cfg.PreemptionPriorityFor.
func New(cfg *config.Config, clock Clock) *Scheduler {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	s := &Scheduler{cfg: cfg, clock: clock}
	s.cores = make([]*CoreContext, cfg.NumCores)
	for i := uint8(0); i < cfg.NumCores; i++ {
		s.cores[i] = newCoreContext(i, cfg.PreemptionPriorityFor(i))
	}
	return s
}

// Core returns the CoreContext for id, or nil if out of range.
func (s *Scheduler) Core(id uint8) *CoreContext {
	if int(id) >= len(s.cores) {
		return nil
	}
	return s.cores[id]
}

func (s *Scheduler) coreOf(h *thread.Handle) *CoreContext {
	return s.Core(h.CoreID)
}

// now is a small convenience wrapper so the rest of the package doesn't
// need to thread s.clock through every call site by hand.
func (s *Scheduler) now() uint64 {
	return s.clock.Now()
}

// boundThread adapts a (*Scheduler, *thread.Handle) pair to the
// hostsignal.Recipient interface, implementing the signal handler shim
// (spec.md §4.8) without hostsignal needing to import either sched or
// thread.
type boundThread struct {
	s *Scheduler
	h *thread.Handle
}

func (b boundThread) HandleYieldSignal() {
	debug.DPrintf(debug.SIGNAL, "%v signal handler shim firing", b.h)
	if err := b.s.Rotate(b.h, false); err != nil {
		debug.DPrintf(debug.ERROR, "%v Rotate from signal handler: %v", b.h, err)
	}
	b.h.YieldPending.Store(false)
	b.s.WaitSchedule(b.h, false)
}

// bind marks h as actively running guest code on its current OS thread,
// making it the recipient hostsignal.Notify resolves for future
// SendSignal calls targeting that OS thread.
func (s *Scheduler) bind(h *thread.Handle) {
	tid := h.OSThreadID()
	if tid != 0 {
		hostsignal.Bind(tid, boundThread{s: s, h: h})
	}
}

func (s *Scheduler) unbind(h *thread.Handle) {
	tid := h.OSThreadID()
	if tid != 0 {
		hostsignal.Unbind(tid)
	}
}

// LogStats emits a PERF-selector snapshot of the scheduler's activity
// counters, the same on-demand pattern util/perf/perf.go uses for its
// latency histograms.
func (s *Scheduler) LogStats() {
	s.Counters.logSnapshot()
}
