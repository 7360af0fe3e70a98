// Package hostsignal implements the thread-local binding registry and
// signal dispatch spec.md §4.8 calls an external collaborator: the
// pointer the signal handler reads to recover "the current guest
// thread's context". Go has no user-addressable per-OS-thread storage,
// so the registry is a plain map keyed by OS thread id, guarded by a
// mutex cheap enough to read from the dispatch goroutine this package
// runs.
package hostsignal

import (
	"sync"

	"github.com/jwarrior319/skyline/debug"
)

// Recipient is the minimal view of a guest thread the dispatcher needs:
// enough to invoke the signal handler shim on its behalf without this
// package importing the scheduler (which would create an import cycle,
// since sched imports hostsignal to register recipients).
type Recipient interface {
	// HandleYieldSignal runs the signal handler shim (spec.md §4.8):
	// Rotate(false), clear YieldPending, WaitSchedule(false).
	HandleYieldSignal()
}

var (
	mu       sync.Mutex
	bound    = map[int32]Recipient{}
	inflight = map[int32]bool{}
)

// Bind registers r as the recipient for OS thread tid. sched's
// Scheduler.Register calls it once, when a guest thread's goroutine is
// pinned to its OS thread, before the thread's first WaitSchedule.
func Bind(tid int32, r Recipient) {
	mu.Lock()
	defer mu.Unlock()
	bound[tid] = r
	debug.DPrintf(debug.SIGNAL, "bind tid=%v", tid)
}

// Unbind clears tid's binding. sched's Scheduler.Unregister calls it when
// the guest thread's goroutine is done running on that OS thread.
func Unbind(tid int32) {
	mu.Lock()
	defer mu.Unlock()
	delete(bound, tid)
	debug.DPrintf(debug.SIGNAL, "unbind tid=%v", tid)
}

// lookup returns the recipient bound to tid, or nil if absent — the
// "if (*tls)" check in spec.md §4.8.
func lookup(tid int32) Recipient {
	mu.Lock()
	defer mu.Unlock()
	return bound[tid]
}

// markInflight reports whether tid didn't already have a handler
// dispatch in progress, and if so reserves one. Prevents two signals
// landing on the same thread in quick succession from running the shim
// concurrently on its behalf.
func markInflight(tid int32) bool {
	mu.Lock()
	defer mu.Unlock()
	if inflight[tid] {
		return false
	}
	inflight[tid] = true
	return true
}

func clearInflight(tid int32) {
	mu.Lock()
	defer mu.Unlock()
	delete(inflight, tid)
}
