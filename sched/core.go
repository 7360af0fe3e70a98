package sched

import (
	"sync"
)

// CoreContext is C2: one virtual core's ready queue and the mutex that
// guards it. Two core mutexes are never held simultaneously (see
// Scheduler's lock-order note in scheduler.go); load balancing releases
// one core's mutex before acquiring the next.
type CoreContext struct {
	ID                 uint8
	PreemptionPriority int8

	mu    sync.Mutex
	queue orderedQueue
}

func newCoreContext(id uint8, preemptionPriority int8) *CoreContext {
	return &CoreContext{ID: id, PreemptionPriority: preemptionPriority}
}

// Len reports the current queue depth. Exists mainly for tests and
// diagnostics; scheduling decisions take the mutex themselves rather
// than trusting a racy external Len().
func (c *CoreContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}
