package sched

import "time"

// Clock is the monotonic tick source spec.md §6 treats as an external
// collaborator (now() -> u64). Timeslice accounting and load-balancing
// projections are all expressed in ticks from this source.
type Clock interface {
	Now() uint64
}

// MonotonicClock reports elapsed nanoseconds since it was constructed,
// the same time.Now()/time.Since idiom util/perf/perf.go uses
// throughout for latency measurement.
type MonotonicClock struct {
	epoch time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

func (c *MonotonicClock) Now() uint64 {
	return uint64(time.Since(c.epoch))
}
