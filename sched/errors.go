package sched

import "errors"

// ErrInvalidSchedulerState is returned by Rotate when the calling thread
// is neither the head of its core's queue nor force-yielded into its
// priority band — an invariant violation spec.md §7 calls unrecoverable.
// Callers that want the teacher's fatal-on-invariant-violation behavior
// should call debug.DFatalf at the boundary where this error surfaces.
var ErrInvalidSchedulerState = errors.New("sched: Rotate called while thread not in its core's queue")

// ErrExternalMigrationRequiresInsert is returned by LoadBalance when
// asked to migrate a thread other than the caller without alwaysInsert.
var ErrExternalMigrationRequiresInsert = errors.New("sched: migrating an external thread requires alwaysInsert")
