package sched

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// Register pins the calling goroutine to its current OS thread, pins
// that OS thread to h's affinity mask via sched_setaffinity so the
// virtual-core bookkeeping this package does is backed by a matching
// host-level pin, and binds h as the hostsignal recipient for that
// thread, so a later SendSignal targeting h's bound tid reaches this
// exact goroutine's HandleYieldSignal shim (spec.md §4.8). Call once,
// from the goroutine that is about to run h's guest code, before its
// first WaitSchedule.
func (s *Scheduler) Register(h *thread.Handle) {
	runtime.LockOSThread()
	cpuSet := h.AffinityMask.CPUSet()
	if err := unix.SchedSetaffinity(0, &cpuSet); err != nil {
		debug.DPrintf(debug.ERROR, "%v Register: SchedSetaffinity: %v", h, err)
	}
	h.BindOSThread()
	s.bind(h)
}

// Unregister reverses Register: called when h's guest code is done
// running on this goroutine, e.g. at thread termination or before
// handing the guest thread off to ParkThread.
func (s *Scheduler) Unregister(h *thread.Handle) {
	s.unbind(h)
	h.UnbindOSThread()
	runtime.UnlockOSThread()
}
