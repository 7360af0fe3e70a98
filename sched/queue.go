package sched

import (
	"sort"

	"github.com/jwarrior319/skyline/thread"
)

// orderedQueue is a priority-ordered, FIFO-within-band list of thread
// handles. spec.md's design notes suggest an intrusive linked list so
// splicing the head to mid-queue is O(1); a Go slice makes splice O(n)
// but keeps every other operation (index, iterate, len) a one-liner, and
// core queues are small (bounded by the number of guest threads with
// that core in their affinity mask), so the simpler representation wins.
type orderedQueue []*thread.Handle

// upperBound returns the first index whose element's priority is
// strictly lower-ranked (worse, i.e. numerically greater) than p. A
// thread with priority p inserted at this index lands after every
// existing thread of priority <= p, preserving FIFO within a band.
func (q orderedQueue) upperBound(p int8) int {
	return sort.Search(len(q), func(i int) bool {
		return thread.IsHigherPriority(p, q[i].Priority())
	})
}

// lowerBound returns the first index whose element's priority is >= p.
func (q orderedQueue) lowerBound(p int8) int {
	return sort.Search(len(q), func(i int) bool {
		return !thread.IsHigherPriority(q[i].Priority(), p)
	})
}

// equalRange returns [lo, hi), the contiguous run of elements whose
// priority equals p.
func (q orderedQueue) equalRange(p int8) (lo, hi int) {
	lo = q.lowerBound(p)
	hi = q.upperBound(p)
	return
}

func (q orderedQueue) indexOf(h *thread.Handle) int {
	for i, t := range q {
		if t == h {
			return i
		}
	}
	return -1
}

// insertAt splices h into position i.
func (q orderedQueue) insertAt(i int, h *thread.Handle) orderedQueue {
	q = append(q, nil)
	copy(q[i+1:], q[i:])
	q[i] = h
	return q
}

// removeAt deletes the element at position i.
func (q orderedQueue) removeAt(i int) orderedQueue {
	copy(q[i:], q[i+1:])
	q[len(q)-1] = nil
	return q[:len(q)-1]
}

// moveToUpperBound removes the element at from and reinserts it at its
// priority-ordered upper bound — the "splice front to upper_bound"
// operation Rotate and UpdatePriority both perform.
func (q orderedQueue) moveToUpperBound(from int) orderedQueue {
	h := q[from]
	q = q.removeAt(from)
	dest := q.upperBound(h.Priority())
	return q.insertAt(dest, h)
}

func (q orderedQueue) front() *thread.Handle {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
