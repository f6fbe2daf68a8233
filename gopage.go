package gopage

import (
	"time"

	"github.com/MasterOfBinary/gopage/batcher"
	"github.com/MasterOfBinary/gopage/fetchexecutor"
	"github.com/MasterOfBinary/gopage/pagingstate"
	"github.com/MasterOfBinary/gopage/resultparser"
	"github.com/MasterOfBinary/gopage/scheduler"
)

// Re-exported building blocks, so common usage only needs to import
// gopage itself.
type (
	// PagingState is a single entity's pagination progress.
	PagingState = pagingstate.PagingState
	// Cursor is a PagingState's three-state cursor.
	Cursor = pagingstate.Cursor
	// Key identifies a PagingState by entity type and ID.
	Key = pagingstate.Key
	// Parser turns a fetch response into cursor/item updates and spawns.
	Parser = resultparser.Parser
	// FetchFunc performs one batch's fetch call.
	FetchFunc = fetchexecutor.Fetch
	// Logger receives scheduler diagnostics.
	Logger = scheduler.Logger
	// StatsCollector receives scheduler metrics.
	StatsCollector = scheduler.StatsCollector
	// EngineConfig is the scheduler's immutable configuration.
	EngineConfig = scheduler.EngineConfig
)

// PagingStateOf constructs a fresh, never-fetched PagingState for the given
// entity.
func PagingStateOf(entityType string, id any) *PagingState {
	return pagingstate.New(entityType, id)
}

// Done is a terminal cursor: no further pages.
func Done() Cursor { return pagingstate.Done() }

// Next is a cursor pointing at another page.
func Next(value any) Cursor { return pagingstate.Next(value) }

// Option configures an EngineConfig. EngineConfig is built once and never
// mutated in place (spec.md §3: "EngineConfig — immutable configuration"),
// so options are free functions returning a modified copy, the same shape
// as the teacher's chainable *Batch With* methods in batch/batch.go
// rendered against a value type instead of a pointer receiver.
type Option func(EngineConfig) EngineConfig

// Engine builds an EngineConfig from a required Parser and any Options,
// applying defaults for everything left unset.
func Engine(parser Parser, opts ...Option) EngineConfig {
	cfg := EngineConfig{Parser: parser}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return cfg.WithDefaults()
}

// WithFetchFn sets the function used to perform each batch's fetch call.
func WithFetchFn(fn FetchFunc) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.FetchFn = fn
		return cfg
	}
}

// WithRegistry sets a Registry to dispatch fetches by entity type, used
// when no explicit FetchFn is set.
func WithRegistry(reg *scheduler.Registry) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.Registry = reg
		return cfg
	}
}

// WithConcurrency bounds the number of batches dispatched at once.
func WithConcurrency(n int) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.MaxConcurrency = n
		return cfg
	}
}

// WithResultBuf sets the output channel's buffer capacity.
func WithResultBuf(n int) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.ResultBuf = n
		return cfg
	}
}

// WithBatcher sets how PagingStates are grouped into batches: sorted
// dispatch order, the maximum states per batch, and the batch key function
// (nil batchFn keeps batcher.ByEntityType).
func WithBatcher(sorted bool, maxItems int, batchFn batcher.KeyFunc) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.Batcher = batcher.NewConstantConfig(batcher.Values{
			Sorted:   sorted,
			MaxItems: maxItems,
			KeyFunc:  batchFn,
		})
		return cfg
	}
}

// WithIdleFlush sets how long the coordinator waits for an event before
// forcing a partial batch to dispatch.
func WithIdleFlush(d time.Duration) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.IdleFlush = d
		return cfg
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(l Logger) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.Logger = l
		return cfg
	}
}

// WithStats sets the metrics sink.
func WithStats(s StatsCollector) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.Stats = s
		return cfg
	}
}

// WithLimits sets extra resource limits beyond the concurrency cap.
func WithLimits(limits scheduler.ResourceLimits) Option {
	return func(cfg EngineConfig) EngineConfig {
		cfg.Limits = limits
		return cfg
	}
}
