package scheduler

import "time"

// Default tunables, adapted from the teacher's batch.DefaultItemBufferSize
// / DefaultIDBufferSize / DefaultErrorBufferSize trio.
const (
	// DefaultResultBuf is the default output channel buffer capacity.
	DefaultResultBuf = 100

	// DefaultInputBuf is the default input channel buffer capacity.
	DefaultInputBuf = 100

	// DefaultMaxConcurrency is the default fetch executor concurrency cap.
	DefaultMaxConcurrency = 1
)

// DefaultIdleFlush is the idle-flush interval: how long the coordinator
// waits for an event before forcing a partial batch to dispatch. The spec
// treats 100ms as a hard-coded constant but allows an implementation to
// expose it as configuration; EngineConfig.IdleFlush does exactly that,
// defaulting to this value.
const DefaultIdleFlush = 100 * time.Millisecond
