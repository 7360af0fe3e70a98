package sched

import (
	"sync/atomic"

	"github.com/montanaflynn/stats"

	"github.com/jwarrior319/skyline/debug"
)

// Counters tracks scheduler activity using the same atomic.Int64-counter
// idiom as sigmaos's stats/counter.go (Inc/Dec/Read wrapping
// atomic.Int64), specialized to the events this scheduler cares about.
type Counters struct {
	Migrations  atomic.Int64
	Preemptions atomic.Int64
	Parks       atomic.Int64
	Rotates     atomic.Int64
}

func (c *Counters) logSnapshot() {
	if !debug.WillBePrinted(debug.PERF) {
		return
	}
	debug.DPrintf(debug.PERF, "migrations=%d preemptions=%d parks=%d rotates=%d",
		c.Migrations.Load(), c.Preemptions.Load(), c.Parks.Load(), c.Rotates.Load())
}

// TimesliceSamples accumulates observed timeslice lengths (in ticks) so
// callers can report aggregate percentiles alongside each thread's raw
// EWMA, using montanaflynn/stats the way simms/stats.go and
// loadgen/loadgen.go compute latency percentiles from recorded samples.
type TimesliceSamples struct {
	samples []float64
}

func (t *TimesliceSamples) Record(ticks uint64) {
	t.samples = append(t.samples, float64(ticks))
}

// Percentile reports the p-th percentile (0-100) of recorded timeslice
// samples by the nearest-rank method, or an error if there are no
// samples yet.
func (t *TimesliceSamples) Percentile(p float64) (float64, error) {
	return stats.PercentileNearestRank(t.samples, p)
}

// Mean reports the mean of recorded timeslice samples.
func (t *TimesliceSamples) Mean() (float64, error) {
	return stats.Mean(t.samples)
}
