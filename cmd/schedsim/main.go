// Command schedsim drives a synthetic population of guest threads
// through a live Scheduler and reports aggregate timeslice statistics.
// It plays the same role cmd/sim/simbid/main.go does for the bidding
// simulator — a ticked synthetic workload generator — but rather than
// modeling contention numerically, it runs real goroutines against the
// scheduler package so the load-balancing and preemption paths get
// genuine concurrent exercise.
package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jwarrior319/skyline/config"
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/hostsignal"
	"github.com/jwarrior319/skyline/sched"
	"github.com/jwarrior319/skyline/thread"
)

var (
	numThreads = flag.Int("threads", 64, "number of synthetic guest threads")
	numCores   = flag.Int("cores", 4, "number of virtual cores")
	avgBursts  = flag.Float64("bursts", 6, "mean run-bursts per thread (Poisson)")
	seed       = flag.Int64("seed", 1, "PRNG seed")
	parkProb   = flag.Float64("parkProb", 0.1, "probability a thread parks between bursts instead of rotating")
)

func main() {
	flag.Parse()
	hostsignal.StartWatcher()

	cfg := config.Default()
	cfg.NumCores = uint8(*numCores)
	s := sched.New(cfg, nil)

	r := rand.New(rand.NewSource(uint64(*seed)))
	burstDist := &distuv.Poisson{Lambda: *avgBursts, Src: r}
	priorityDist := &distuv.Uniform{Min: 0, Max: 64, Src: r}

	var samples sched.TimesliceSamples
	var samplesMu sync.Mutex

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *numThreads; i++ {
		id := thread.Id(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			runSyntheticThread(s, id, r, burstDist, priorityDist, *numCores, &samples, &samplesMu)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	s.LogStats()
	fmt.Printf("threads=%d cores=%d elapsed=%s signals-seen=%d\n",
		*numThreads, *numCores, elapsed, hostsignal.SignalsSeen())

	if mean, err := samples.Mean(); err == nil {
		p99, _ := samples.Percentile(99)
		fmt.Printf("mean-timeslice=%s p99-timeslice=%s\n",
			humanize.Comma(int64(mean)), humanize.Comma(int64(p99)))
	}
}

// runSyntheticThread plays out one guest thread's lifecycle: admit,
// alternate wait-then-run for a Poisson-distributed number of bursts,
// then leave the scheduler.
func runSyntheticThread(
	s *sched.Scheduler,
	id thread.Id,
	r *rand.Rand,
	burstDist *distuv.Poisson,
	priorityDist *distuv.Uniform,
	numCores int,
	samples *sched.TimesliceSamples,
	samplesMu *sync.Mutex,
) {
	priority := int8(priorityDist.Rand())
	affinity := randomAffinity(r, numCores)
	h := thread.New(id, priority, affinity)
	h.CoreID = firstAdmissibleCore(affinity, numCores)

	s.Register(h)
	defer s.Unregister(h)

	bursts := int(burstDist.Rand())
	if bursts < 1 {
		bursts = 1
	}

	s.InsertThread(h, h)
	for b := 0; b < bursts; b++ {
		s.WaitSchedule(h, true)

		work := time.Duration(1+r.Intn(3)) * time.Millisecond
		time.Sleep(work)

		samplesMu.Lock()
		samples.Record(h.AverageTimeslice)
		samplesMu.Unlock()

		if b == bursts-1 {
			s.RemoveThread(h)
			return
		}

		// A fraction of threads park between bursts rather than
		// rotating, the way a guest thread blocks on a futex or
		// condition variable outside the scheduler's view. ParkThread
		// blocks until some other thread's Rotate/RemoveThread exposes
		// a core it can reclaim.
		if r.Float64() < *parkProb {
			s.ParkThread(h)
			continue
		}

		if err := s.Rotate(h, true); err != nil {
			debug.DPrintf(debug.ERROR, "%v schedsim rotate: %v", h, err)
			return
		}
	}
}

func randomAffinity(r *rand.Rand, numCores int) thread.Mask {
	n := 1 + r.Intn(numCores)
	chosen := make(map[uint8]bool, n)
	for len(chosen) < n {
		chosen[uint8(r.Intn(numCores))] = true
	}
	cores := make([]uint8, 0, n)
	for c := range chosen {
		cores = append(cores, c)
	}
	return thread.NewMask(cores...)
}

func firstAdmissibleCore(m thread.Mask, numCores int) uint8 {
	for c := uint8(0); c < uint8(numCores); c++ {
		if m.Test(c) {
			return c
		}
	}
	return 0
}
