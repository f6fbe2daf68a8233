package scheduler

import (
	"fmt"

	"github.com/MasterOfBinary/gopage/pagingstate"
)

// FetchError wraps a failure from the user's fetch function (or from
// dispatching to an unregistered entity type), attached to every
// PagingState in the failing batch. Adapted from the teacher's
// batch.SourceError.
type FetchError struct {
	Key pagingstate.Key
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a failure from the result parser, attached to every
// PagingState in the failing batch. Adapted from the teacher's
// batch.ProcessorError.
type ParseError struct {
	Key pagingstate.Key
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SpawnCollisionError records that a spawned state's key matched a live
// state and was dropped. It is never surfaced to callers (the policy is
// silent-ignore per the spec); it exists only to give the Logger/Stats a
// typed value to report.
type SpawnCollisionError struct {
	Key pagingstate.Key
}

func (e *SpawnCollisionError) Error() string {
	return fmt.Sprintf("spawn collision for %s: existing state kept", e.Key)
}

// ErrTooManyPendingStates is returned (wrapped) by ValidateSeedCount, and so
// by the gopage front-ends Paginate, PaginateColl and PaginateOne, when the
// initial seed count alone exceeds ResourceLimits.MaxPendingStates.
type ErrTooManyPendingStates struct {
	Limit int
	Count int
}

func (e *ErrTooManyPendingStates) Error() string {
	return fmt.Sprintf("too many pending states: %d exceeds limit %d", e.Count, e.Limit)
}
