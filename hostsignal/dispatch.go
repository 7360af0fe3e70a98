package hostsignal

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/jwarrior319/skyline/debug"
)

// Notify triggers the signal handler shim (spec.md §4.8) for tid if a
// recipient is currently bound, i.e. the "if (*tls)" branch. If no
// recipient is bound, the shim's "absent" branch already happened: the
// caller (Handle.SendSignal) set YieldPending before calling Notify, so
// there's nothing further to do here.
//
// Go gives user code no way to force an arbitrary running goroutine to
// execute a handler synchronously the instant an OS signal lands on its
// thread (that requires a cgo sigaction, outside a pure-Go module's
// reach). This function is the idiomatic substitute: it runs the shim on
// a dedicated goroutine, one at a time per tid, as soon as the signal is
// requested rather than waiting on the notify channel below, which exists
// to make the OS signal's real side effects (interrupting a blocking
// syscall) observable but cannot reliably attribute a received signal
// back to a single sender.
func Notify(tid int32) {
	r := lookup(tid)
	if r == nil {
		return
	}
	if !markInflight(tid) {
		return
	}
	go func() {
		defer clearInflight(tid)
		debug.DPrintf(debug.SIGNAL, "dispatch tid=%v", tid)
		r.HandleYieldSignal()
	}()
}

var (
	watcherOnce    sync.Once
	signalsSeen    atomic.Uint64
	watcherEnabled atomic.Bool
)

// StartWatcher installs a real os/signal.Notify listener for
// thread.YieldSignal, so that tgkill-delivered signals are drained by
// the process (otherwise an un-handled SIGUSR1 would terminate it) and
// so SignalsSeen() reports genuine OS-level delivery counts for
// diagnostics. Idempotent; safe to call from multiple Scheduler
// instances in the same process.
func StartWatcher() {
	watcherOnce.Do(func() {
		ch := make(chan os.Signal, 64)
		signal.Notify(ch, syscall.SIGUSR1)
		watcherEnabled.Store(true)
		go func() {
			for range ch {
				signalsSeen.Add(1)
			}
		}()
	})
}

// SignalsSeen returns how many real SIGUSR1 deliveries the watcher has
// observed since StartWatcher was called.
func SignalsSeen() uint64 {
	return signalsSeen.Load()
}
