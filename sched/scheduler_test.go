package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwarrior319/skyline/config"
	"github.com/jwarrior319/skyline/thread"
)

func newTestScheduler(numCores uint8) *Scheduler {
	cfg := config.Default()
	cfg.NumCores = numCores
	return New(cfg, nil)
}

func newTestThread(id thread.Id, priority int8, cores ...uint8) *thread.Handle {
	h := thread.New(id, priority, thread.NewMask(cores...))
	h.CoreID = cores[0]
	return h
}

func queueOf(c *CoreContext) []*thread.Handle {
	return []*thread.Handle(c.queue)
}

func TestInsertFIFOWithinBand(t *testing.T) {
	s := newTestScheduler(4)
	t1 := newTestThread(1, 40, 0)
	t2 := newTestThread(2, 40, 0)
	t3 := newTestThread(3, 40, 0)

	s.InsertThread(t1, nil)
	s.InsertThread(t2, nil)
	s.InsertThread(t3, nil)

	core := s.Core(0)
	require.Equal(t, []*thread.Handle{t1, t2, t3}, queueOf(core))

	require.NoError(t, s.Rotate(t1, true))
	assert.Equal(t, []*thread.Handle{t2, t3, t1}, queueOf(core))
}

func TestInsertDethroneExternal(t *testing.T) {
	s := newTestScheduler(4)
	t1 := newTestThread(1, 40, 0)
	s.InsertThread(t1, t1)

	t2 := newTestThread(2, 30, 0)
	s.InsertThread(t2, nil)

	core := s.Core(0)
	require.Equal(t, []*thread.Handle{t1, t2}, queueOf(core))
	assert.True(t, t1.YieldPending.Load())

	require.NoError(t, s.Rotate(t1, false))
	assert.Equal(t, []*thread.Handle{t2, t1}, queueOf(core))
}

func TestSelfInsertOptimization(t *testing.T) {
	s := newTestScheduler(4)
	existingHead := newTestThread(1, 40, 0)
	s.InsertThread(existingHead, nil)

	selfInserter := newTestThread(2, 30, 0)
	s.InsertThread(selfInserter, selfInserter)

	core := s.Core(0)
	assert.Equal(t, []*thread.Handle{selfInserter, existingHead}, queueOf(core))
	assert.True(t, existingHead.ForceYield)
	assert.True(t, selfInserter.YieldPending.Load())
	assert.False(t, existingHead.YieldPending.Load())
}

func TestLoadBalanceTiesPreferCurrentCore(t *testing.T) {
	s := newTestScheduler(4)
	cand := newTestThread(10, 50, 0, 1)

	occupant := func(id thread.Id, avg uint64) *thread.Handle {
		h := newTestThread(id, 50, 0)
		h.AverageTimeslice = avg
		return h
	}

	core0 := s.Core(0)
	core1 := s.Core(1)
	core0.queue = orderedQueue{occupant(100, 40)}
	core1.queue = orderedQueue{occupant(101, 40)}

	best := s.bestCoreL(cand, core0)
	assert.Same(t, core0, best)
}

func TestParkThenWake(t *testing.T) {
	s := newTestScheduler(2)
	blocker0 := newTestThread(1, 10, 0)
	resident := newTestThread(2, 30, 0)
	blocker1 := newTestThread(3, 5, 1)
	s.InsertThread(blocker0, blocker0)
	s.InsertThread(resident, nil)
	s.InsertThread(blocker1, blocker1)

	parker := newTestThread(4, 20, 0, 1)

	done := make(chan struct{})
	go func() {
		s.ParkThread(parker)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	// RemoveThread now wakes the parked queue itself once it exposes
	// resident as C0's new head; no separate WakeParkedThread call needed.
	s.RemoveThread(blocker0)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ParkThread did not return after WakeParkedThread claimed a core")
	}

	assert.Equal(t, uint8(0), parker.CoreID)
	core0 := s.Core(0)
	assert.Same(t, parker, core0.queue.front())
}

func TestWakeParkedThreadUsesSecondQueueEntryForTieBreak(t *testing.T) {
	s := newTestScheduler(1)
	core := s.Core(0)

	caller := newTestThread(1, 20, 0)
	caller.TimesliceStart = 100 // must NOT be consulted; it's caller's own start, not the next occupant's
	next := newTestThread(2, 20, 0)
	next.TimesliceStart = 5
	core.queue = orderedQueue{caller, next}

	parked := newTestThread(3, 20, 0)
	parked.CoreID = config.ParkedCoreId
	parked.TimesliceStart = 10
	s.parked = orderedQueue{parked}

	// next started before parked did, so parked loses the tie-break and
	// stays put. Using caller's own TimesliceStart in place of next's
	// would flip this to a claim.
	s.WakeParkedThread(caller)
	assert.Equal(t, config.ParkedCoreId, parked.CoreID)
}

func TestRotateForceYieldPath(t *testing.T) {
	s := newTestScheduler(4)
	existingHead := newTestThread(1, 40, 0)
	s.InsertThread(existingHead, nil)

	selfInserter := newTestThread(2, 30, 0)
	s.InsertThread(selfInserter, selfInserter)
	require.True(t, existingHead.ForceYield)

	require.NoError(t, s.Rotate(existingHead, true))
	assert.False(t, existingHead.ForceYield)
}

func TestRotateNonHeadWithoutForceYieldIsInvalid(t *testing.T) {
	s := newTestScheduler(1)
	head := newTestThread(1, 10, 0)
	other := newTestThread(2, 20, 0)
	s.InsertThread(head, head)
	s.InsertThread(other, nil)
	require.False(t, other.ForceYield)

	err := s.Rotate(other, true)
	assert.ErrorIs(t, err, ErrInvalidSchedulerState)
}

func TestTimedWaitScheduleExpires(t *testing.T) {
	s := newTestScheduler(1)
	t0 := newTestThread(1, 10, 0)
	t1 := newTestThread(2, 10, 0)
	s.InsertThread(t0, t0)
	s.InsertThread(t1, nil)

	acquired := s.TimedWaitSchedule(t1, 5*time.Millisecond)
	assert.False(t, acquired)
	assert.False(t, t1.IsPreempted)

	core := s.Core(0)
	assert.Equal(t, []*thread.Handle{t0, t1}, queueOf(core))
}

func TestUpdatePriorityAtHeadSignalsSelf(t *testing.T) {
	s := newTestScheduler(1)
	head := newTestThread(1, 40, 0)
	next := newTestThread(2, 40, 0)
	s.InsertThread(head, head)
	s.InsertThread(next, nil)

	require.NoError(t, s.UpdatePriority(head, 50))
	assert.True(t, head.YieldPending.Load())
	assert.Equal(t, int8(50), head.Priority())
}

func TestUpdatePriorityElsewhereDeferredDethrone(t *testing.T) {
	s := newTestScheduler(1)
	head := newTestThread(1, 40, 0)
	mover := newTestThread(2, 50, 0)
	s.InsertThread(head, head)
	s.InsertThread(mover, nil)

	require.NoError(t, s.UpdatePriority(mover, 10))

	core := s.Core(0)
	assert.Equal(t, []*thread.Handle{head, mover}, queueOf(core))
	assert.True(t, head.YieldPending.Load())
	assert.Equal(t, int8(10), mover.Priority())
}

func TestRemoveThreadNotifiesNewHead(t *testing.T) {
	s := newTestScheduler(1)
	h1 := newTestThread(1, 10, 0)
	h2 := newTestThread(2, 20, 0)
	s.InsertThread(h1, h1)
	s.InsertThread(h2, nil)

	scheduled := make(chan struct{})
	go func() {
		s.WaitSchedule(h2, false)
		close(scheduled)
	}()
	time.Sleep(10 * time.Millisecond) // let h2 block in WaitSchedule

	s.RemoveThread(h1)

	select {
	case <-scheduled:
	case <-time.After(time.Second):
		t.Fatal("RemoveThread did not wake the new head")
	}

	core := s.Core(0)
	assert.Equal(t, []*thread.Handle{h2}, queueOf(core))
	assert.False(t, h1.IsPreempted)
	assert.False(t, h1.YieldPending.Load())
}

func TestRotateInvalidState(t *testing.T) {
	s := newTestScheduler(1)
	stray := newTestThread(1, 10, 0)

	err := s.Rotate(stray, true)
	assert.ErrorIs(t, err, ErrInvalidSchedulerState)
}
