// Package fetchexecutor provides a bounded-parallelism task runner for the
// scheduler's per-batch fetch calls.
package fetchexecutor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Executor runs independent tasks with at most MaxConcurrency running at
// once. It is backed by golang.org/x/sync/errgroup, whose TryGo/SetLimit
// pair matches the spec's try_submit/in_flight contract directly: TryGo
// returns false immediately instead of blocking when the group is at its
// limit, which is exactly the non-blocking dispatch the scheduler's event
// loop needs.
type Executor struct {
	group   *errgroup.Group
	ctx     context.Context
	limit   int
	running int64
}

// New creates an Executor bounded to maxConcurrency concurrent tasks. A
// non-positive maxConcurrency is treated as 1, the spec's default.
func New(ctx context.Context, maxConcurrency int) *Executor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrency)

	return &Executor{
		group: group,
		ctx:   groupCtx,
		limit: maxConcurrency,
	}
}

// TrySubmit starts task via the configured async runner if the executor has
// spare concurrency, returning true. If the executor is already at its
// concurrency cap, it returns false without starting task.
func (e *Executor) TrySubmit(task func(ctx context.Context)) bool {
	atomic.AddInt64(&e.running, 1)
	started := e.group.TryGo(func() error {
		defer atomic.AddInt64(&e.running, -1)
		task(e.ctx)
		return nil
	})
	if !started {
		atomic.AddInt64(&e.running, -1)
	}
	return started
}

// InFlight returns the current number of running tasks.
func (e *Executor) InFlight() int {
	return int(atomic.LoadInt64(&e.running))
}

// MaxConcurrency returns the configured concurrency cap.
func (e *Executor) MaxConcurrency() int {
	return e.limit
}

// Wait blocks until all submitted tasks have returned. Tasks never return
// an error to the group (failures are reported through the scheduler's own
// completion channel instead), so Wait always returns nil.
func (e *Executor) Wait() error {
	return e.group.Wait()
}
