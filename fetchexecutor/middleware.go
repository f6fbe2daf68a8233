package fetchexecutor

import (
	"context"
	"fmt"
	"time"

	"github.com/MasterOfBinary/gopage/pagingstate"
)

// Fetch is the shape of the user-supplied fetch function: given caller-chosen
// params (opaque to this package) and the members of one batch, it performs
// the underlying call and returns a response or an error. Any error is
// converted by the scheduler into a batch-wide FetchFailure.
type Fetch func(ctx context.Context, params any, members []*pagingstate.PagingState) (any, error)

// Logger is the minimal logging surface middleware needs. scheduler.Logger
// satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Stats is the minimal stats surface middleware needs.
// scheduler.StatsCollector satisfies it.
type Stats interface {
	RecordBatchStart(batchSize int)
	RecordBatchComplete(batchSize int, duration time.Duration)
}

// WithLogging wraps fetch so every call is logged at Debug on entry and
// Debug/Error on completion, adapted from the teacher's LoggingProcessor
// (processor/logging.go) which does the same thing one layer up the stack
// for item processors.
func WithLogging(fetch Fetch, logger Logger, name string) Fetch {
	if logger == nil {
		return fetch
	}
	if name == "" {
		name = "fetch"
	}

	return func(ctx context.Context, params any, members []*pagingstate.PagingState) (any, error) {
		start := time.Now()
		logger.Debug("%s: starting batch of %d state(s)", name, len(members))

		resp, err := fetch(ctx, params, members)

		duration := time.Since(start)
		if err != nil {
			logger.Error("%s: batch of %d failed after %v: %v", name, len(members), duration, err)
		} else {
			logger.Debug("%s: batch of %d completed in %v", name, len(members), duration)
		}
		return resp, err
	}
}

// WithStats wraps fetch so every call records batch-start/batch-complete
// timing into stats, adapted from the teacher's StatsProcessor
// (processor/stats.go).
func WithStats(fetch Fetch, stats Stats) Fetch {
	if stats == nil {
		return fetch
	}

	return func(ctx context.Context, params any, members []*pagingstate.PagingState) (any, error) {
		stats.RecordBatchStart(len(members))
		start := time.Now()

		resp, err := fetch(ctx, params, members)

		stats.RecordBatchComplete(len(members), time.Since(start))
		return resp, err
	}
}

// Named returns a label for fetch: its Go type, as formatted by %T.
// WithLogging does not call it; an empty name there defaults to "fetch".
func Named(fetch Fetch) string {
	return fmt.Sprintf("%T", fetch)
}
