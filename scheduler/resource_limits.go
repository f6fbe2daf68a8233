package scheduler

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ResourceLimits caps resource usage beyond the raw fetch-concurrency
// number, adapted from the teacher's batch.ResourceLimits. Where the
// teacher bounded per-batch/total memory for a generic item pipeline, here
// the two knobs that matter for a pagination scheduler are how many
// batches the scheduler will let the executor run even when the executor
// itself would technically allow more (useful when the executor is shared
// across engines), and how many live PagingStates the scheduler will hold
// at once, which bounds a hostile or buggy parser's spawn fan-out (the
// accounts -> account_repos example in the spec could otherwise spawn
// unboundedly).
type ResourceLimits struct {
	// MaxConcurrentBatches limits batches dispatched by this scheduler,
	// independent of the executor's own MaxConcurrency. Zero means
	// "defer entirely to the executor's cap".
	MaxConcurrentBatches int

	// MaxPendingStates caps the number of live (queued, forming, or
	// in-flight) PagingStates at once. Zero means unlimited.
	MaxPendingStates int
}

// Validate checks that limits are internally consistent.
func (r ResourceLimits) Validate() error {
	if r.MaxConcurrentBatches < 0 {
		return errors.New("scheduler: MaxConcurrentBatches cannot be negative")
	}
	if r.MaxPendingStates < 0 {
		return errors.New("scheduler: MaxPendingStates cannot be negative")
	}
	return nil
}

// resourceTracker enforces ResourceLimits at runtime. It is consulted by
// the coordinator before dispatch and before admitting new/spawned states.
type resourceTracker struct {
	limits         ResourceLimits
	pendingStates  int64
	activeBatches  int64
}

func newResourceTracker(limits ResourceLimits) *resourceTracker {
	return &resourceTracker{limits: limits}
}

// canDispatch reports whether another batch may be sent to the executor.
func (rt *resourceTracker) canDispatch() bool {
	if rt.limits.MaxConcurrentBatches <= 0 {
		return true
	}
	return atomic.LoadInt64(&rt.activeBatches) < int64(rt.limits.MaxConcurrentBatches)
}

func (rt *resourceTracker) startBatch() { atomic.AddInt64(&rt.activeBatches, 1) }
func (rt *resourceTracker) finishBatch() { atomic.AddInt64(&rt.activeBatches, -1) }

// canAdmit reports whether count additional states may be admitted without
// exceeding MaxPendingStates.
func (rt *resourceTracker) canAdmit(count int) bool {
	if rt.limits.MaxPendingStates <= 0 {
		return true
	}
	return atomic.LoadInt64(&rt.pendingStates)+int64(count) <= int64(rt.limits.MaxPendingStates)
}

func (rt *resourceTracker) admit(count int)  { atomic.AddInt64(&rt.pendingStates, int64(count)) }
func (rt *resourceTracker) release(count int) { atomic.AddInt64(&rt.pendingStates, -int64(count)) }

func validatePendingSeeds(limits ResourceLimits, seedCount int) error {
	if limits.MaxPendingStates > 0 && seedCount > limits.MaxPendingStates {
		return fmt.Errorf("scheduler: %w", &ErrTooManyPendingStates{Limit: limits.MaxPendingStates, Count: seedCount})
	}
	return nil
}

// ValidateSeedCount is the setup-time precheck run by the gopage front-ends
// that take an explicit seed list (Paginate, PaginateColl, PaginateOne):
// it rejects a seed list that alone would exceed cfg.Limits.MaxPendingStates
// before a Scheduler is ever started.
func ValidateSeedCount(cfg EngineConfig, seedCount int) error {
	return validatePendingSeeds(cfg.Limits, seedCount)
}
