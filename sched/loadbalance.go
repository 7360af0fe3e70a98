package sched

import (
	"github.com/jwarrior319/skyline/debug"
	"github.com/jwarrior319/skyline/thread"
)

// LoadBalance picks the admissible core minimizing h's projected wait
// and migrates it there (spec.md §4.6). caller identifies who is making
// the call: pass h itself when h is migrating on its own behalf (e.g.
// from WaitSchedule's backoff path), or a distinct handle when some
// other thread is driving the migration (which requires alwaysInsert,
// since only h itself may evict itself from its current queue).
func (s *Scheduler) LoadBalance(h, caller *thread.Handle, alwaysInsert bool) error {
	h.CoreMigrationMutex.Lock()
	defer h.CoreMigrationMutex.Unlock()

	current := s.coreOf(h)
	pinned := h.AffinityMask.Count() == 1
	currentEmpty := current != nil && current.Len() == 0

	if pinned || currentEmpty {
		if alwaysInsert {
			s.InsertThread(h, caller)
		}
		return nil
	}

	best := s.bestCoreL(h, current)
	if best == current {
		if alwaysInsert {
			s.InsertThread(h, caller)
		}
		return nil
	}

	if h == caller {
		if !alwaysInsert {
			s.RemoveThread(h)
		}
	} else if !alwaysInsert {
		return ErrExternalMigrationRequiresInsert
	}

	debug.DPrintf(debug.LOADBAL, "%v migrating C%d -> C%d", h, h.CoreID, best.ID)
	h.CoreID = best.ID
	s.Counters.Migrations.Add(1)
	s.InsertThread(h, caller)
	return nil
}

// bestCoreL finds the core admitted by h's affinity mask with the
// lowest projected wait, breaking ties in favor of current.
func (s *Scheduler) bestCoreL(h *thread.Handle, current *CoreContext) *CoreContext {
	var best *CoreContext
	var bestProjection uint64

	for _, c := range s.cores {
		if !h.AffinityMask.Test(c.ID) {
			continue
		}
		projection := s.projectedWait(c, h)
		if best == nil || projection < bestProjection || (projection == bestProjection && c == current) {
			best = c
			bestProjection = projection
		}
	}
	return best
}

// projectedWait estimates how long h would wait behind c's existing
// occupants if inserted now. The head's own contribution is
// deliberately capped near zero — it is already running and will yield
// or be preempted shortly — while later same-or-higher-priority
// occupants each contribute their average timeslice (or 1 tick if they
// have none recorded yet). Strictly lower-priority occupants are
// ignored: h would run before them.
func (s *Scheduler) projectedWait(c *CoreContext, h *thread.Handle) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return 0
	}

	now := s.now()
	head := c.queue[0]

	var projection uint64
	switch {
	case head.AverageTimeslice > 0:
		remaining := int64(head.AverageTimeslice) - int64(now-head.TimesliceStart)
		if remaining >= 1 {
			projection = 1
		} else if remaining > 0 {
			projection = uint64(remaining)
		}
	case head.TimesliceStart > 0:
		projection = now - head.TimesliceStart
	default:
		projection = 1
	}

	for _, t := range c.queue[1:] {
		if t.Priority() > h.Priority() {
			continue
		}
		avg := t.AverageTimeslice
		if avg == 0 {
			avg = 1
		}
		projection += avg
	}
	return projection
}
