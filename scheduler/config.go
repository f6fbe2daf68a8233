// Package scheduler is the central coordinator: it ingests PagingStates,
// assembles them into batches via a Batcher, dispatches each batch to a
// FetchFunc under a FetchExecutor's concurrency cap, applies a
// resultparser.Parser to advance state, and emits terminal states.
package scheduler

import (
	"time"

	"github.com/MasterOfBinary/gopage/batcher"
	"github.com/MasterOfBinary/gopage/fetchexecutor"
	"github.com/MasterOfBinary/gopage/resultparser"
)

// FetchFunc is the user-supplied fetch function: fetchexecutor.Fetch under
// the name the spec uses. Kept as a type alias so scheduler and
// fetchexecutor share one underlying function type without an import
// cycle (fetchexecutor never imports scheduler).
type FetchFunc = fetchexecutor.Fetch

// EngineConfig is the scheduler's immutable configuration. Build one as a
// struct literal (New fills unset fields via WithDefaults) or with the
// gopage package's Engine()/With* builders.
type EngineConfig struct {
	// Parser is required: it turns each fetch response into cursor/item
	// updates and spawns.
	Parser resultparser.Parser

	// FetchFn performs one batch's fetch call. Defaults to dispatching
	// through Registry by entity type; if Registry is also nil, an empty
	// one is created, so an unconfigured engine fails dispatch with a
	// FetchError (unknown entity type) rather than a nil call panic.
	FetchFn FetchFunc

	// Registry backs the default FetchFn. Ignored if FetchFn is set
	// explicitly.
	Registry *Registry

	// MaxConcurrency bounds simultaneous in-flight batches. Default 1.
	MaxConcurrency int

	// ResultBuf is the output channel's buffer capacity. Default 100.
	ResultBuf int

	// Batcher controls how PagingStates are grouped into batches.
	// Default: one state per batch (MaxItems 1), unordered, keyed by
	// entity type.
	Batcher batcher.Config

	// IdleFlush is how long the coordinator waits for an event before
	// forcing a partial batch to dispatch. Default DefaultIdleFlush.
	IdleFlush time.Duration

	// Logger receives the scheduler's diagnostics. Default NoOpLogger.
	Logger Logger

	// Stats receives scheduler metrics. Default NoOpStatsCollector.
	Stats StatsCollector

	// Limits caps resource usage beyond MaxConcurrency. Zero value means
	// no extra limits.
	Limits ResourceLimits
}

// WithDefaults returns a copy of cfg with unset fields filled in.
func (cfg EngineConfig) WithDefaults() EngineConfig {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.ResultBuf <= 0 {
		cfg.ResultBuf = DefaultResultBuf
	}
	if cfg.Batcher == nil {
		cfg.Batcher = batcher.NewConstantConfig(batcher.Values{MaxItems: 1, KeyFunc: batcher.ByEntityType})
	}
	if cfg.IdleFlush <= 0 {
		cfg.IdleFlush = DefaultIdleFlush
	}
	if cfg.Logger == nil {
		cfg.Logger = NoOpLogger{}
	}
	if cfg.Stats == nil {
		cfg.Stats = NoOpStatsCollector{}
	}
	if cfg.FetchFn == nil {
		if cfg.Registry == nil {
			cfg.Registry = NewRegistry()
		}
		cfg.FetchFn = cfg.Registry.Fetch
	}
	return cfg
}
