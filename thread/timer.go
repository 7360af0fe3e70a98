package thread

import (
	"sync"
	"time"
)

// PreemptionTimer is a one-shot timer a Handle arms for
// config.Config.PreemptiveTimeslice whenever it becomes head of a core
// whose preemption-priority band matches its own priority. It is the Go
// analogue of the POSIX interval timer (timer_settime) spec.md's
// thread-object contract exposes; time.AfterFunc is the idiomatic Go
// substitute, the same way the rest of this module reaches for
// stdlib/x primitives instead of hand-rolling syscalls the teacher
// doesn't wrap either.
type PreemptionTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Arm (re)starts the timer so fire is invoked once after d, unless
// disarmed first. Any previously armed timer is stopped.
func (t *PreemptionTimer) Arm(d time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fire)
}

// Disarm stops the timer if armed. Safe to call when already disarmed.
func (t *PreemptionTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
