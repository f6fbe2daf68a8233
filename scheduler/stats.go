package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatsCollector collects metrics during scheduling, the pagination
// generalization of the teacher's batch.StatsCollector.
type StatsCollector interface {
	RecordBatchStart(batchSize int)
	RecordBatchComplete(batchSize int, duration time.Duration)
	RecordStateEmitted(success bool)
	RecordStateSpawned()
	RecordSpawnCollision()
	RecordFetchError()
	RecordParseError()
	GetStats() Stats
}

// Stats is a snapshot of scheduler metrics.
type Stats struct {
	BatchesStarted   uint64
	BatchesCompleted uint64
	StatesSucceeded  uint64
	StatesFailed     uint64
	StatesSpawned    uint64
	SpawnCollisions  uint64
	FetchErrors      uint64
	ParseErrors      uint64

	TotalBatchTime time.Duration
	MinBatchTime   time.Duration
	MaxBatchTime   time.Duration

	StartTime      time.Time
	LastUpdateTime time.Time
}

// AverageBatchTime returns the mean batch duration, or 0 if none completed.
func (s Stats) AverageBatchTime() time.Duration {
	if s.BatchesCompleted == 0 {
		return 0
	}
	return s.TotalBatchTime / time.Duration(s.BatchesCompleted)
}

// NoOpStatsCollector discards all metrics. Default when none is configured.
type NoOpStatsCollector struct{}

func (NoOpStatsCollector) RecordBatchStart(int)                      {}
func (NoOpStatsCollector) RecordBatchComplete(int, time.Duration)     {}
func (NoOpStatsCollector) RecordStateEmitted(bool)                   {}
func (NoOpStatsCollector) RecordStateSpawned()                       {}
func (NoOpStatsCollector) RecordSpawnCollision()                     {}
func (NoOpStatsCollector) RecordFetchError()                         {}
func (NoOpStatsCollector) RecordParseError()                         {}
func (NoOpStatsCollector) GetStats() Stats                           { return Stats{} }

// BasicStatsCollector is an in-memory StatsCollector, adapted from the
// teacher's batch.BasicStatsCollector: atomic counters for lock-free
// increments, a mutex-guarded snapshot for timing extremes.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	batchesStarted   uint64
	batchesCompleted uint64
	statesSucceeded  uint64
	statesFailed     uint64
	statesSpawned    uint64
	spawnCollisions  uint64
	fetchErrors      uint64
	parseErrors      uint64
}

// NewBasicStatsCollector creates a BasicStatsCollector ready for use.
func NewBasicStatsCollector() *BasicStatsCollector {
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      time.Now(),
			LastUpdateTime: time.Now(),
			MinBatchTime:   time.Duration(1<<63 - 1),
		},
	}
}

func (b *BasicStatsCollector) RecordBatchStart(int) {
	atomic.AddUint64(&b.batchesStarted, 1)
}

func (b *BasicStatsCollector) RecordBatchComplete(_ int, duration time.Duration) {
	atomic.AddUint64(&b.batchesCompleted, 1)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalBatchTime += duration
	if duration < b.stats.MinBatchTime {
		b.stats.MinBatchTime = duration
	}
	if duration > b.stats.MaxBatchTime {
		b.stats.MaxBatchTime = duration
	}
}

func (b *BasicStatsCollector) RecordStateEmitted(success bool) {
	if success {
		atomic.AddUint64(&b.statesSucceeded, 1)
	} else {
		atomic.AddUint64(&b.statesFailed, 1)
	}
}

func (b *BasicStatsCollector) RecordStateSpawned()   { atomic.AddUint64(&b.statesSpawned, 1) }
func (b *BasicStatsCollector) RecordSpawnCollision()  { atomic.AddUint64(&b.spawnCollisions, 1) }
func (b *BasicStatsCollector) RecordFetchError()      { atomic.AddUint64(&b.fetchErrors, 1) }
func (b *BasicStatsCollector) RecordParseError()      { atomic.AddUint64(&b.parseErrors, 1) }

func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.BatchesStarted = atomic.LoadUint64(&b.batchesStarted)
	stats.BatchesCompleted = atomic.LoadUint64(&b.batchesCompleted)
	stats.StatesSucceeded = atomic.LoadUint64(&b.statesSucceeded)
	stats.StatesFailed = atomic.LoadUint64(&b.statesFailed)
	stats.StatesSpawned = atomic.LoadUint64(&b.statesSpawned)
	stats.SpawnCollisions = atomic.LoadUint64(&b.spawnCollisions)
	stats.FetchErrors = atomic.LoadUint64(&b.fetchErrors)
	stats.ParseErrors = atomic.LoadUint64(&b.parseErrors)

	if stats.BatchesCompleted == 0 {
		stats.MinBatchTime = 0
	}
	return stats
}

// PrometheusStatsCollector exposes the same events as real Prometheus
// metrics, the production counterpart to BasicStatsCollector. Grounded on
// Sternrassler-eve-esi-client's pkg/metrics package, which registers its
// request/retry/cache counters the same way via promauto against a
// caller-supplied registerer.
type PrometheusStatsCollector struct {
	delegate *BasicStatsCollector

	batchesStarted   prometheus.Counter
	batchesCompleted prometheus.Counter
	batchDuration    prometheus.Histogram
	statesEmitted    *prometheus.CounterVec
	statesSpawned    prometheus.Counter
	spawnCollisions  prometheus.Counter
	fetchErrors      prometheus.Counter
	parseErrors      prometheus.Counter
}

// NewPrometheusStatsCollector registers scheduler metrics under namespace
// against reg (use prometheus.DefaultRegisterer for the global registry).
func NewPrometheusStatsCollector(reg prometheus.Registerer, namespace string) *PrometheusStatsCollector {
	factory := promauto.With(reg)

	return &PrometheusStatsCollector{
		delegate: NewBasicStatsCollector(),
		batchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_started_total",
			Help: "Total number of fetch batches started.",
		}),
		batchesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_completed_total",
			Help: "Total number of fetch batches completed.",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_duration_seconds",
			Help:    "Fetch batch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		statesEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "states_emitted_total",
			Help: "Total number of PagingStates emitted, labeled by outcome.",
		}, []string{"outcome"}),
		statesSpawned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "states_spawned_total",
			Help: "Total number of PagingStates spawned by the result parser.",
		}),
		spawnCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "spawn_collisions_total",
			Help: "Total number of spawned states dropped due to key collisions.",
		}),
		fetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_errors_total",
			Help: "Total number of fetch function failures.",
		}),
		parseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "parse_errors_total",
			Help: "Total number of result parser failures.",
		}),
	}
}

func (p *PrometheusStatsCollector) RecordBatchStart(batchSize int) {
	p.batchesStarted.Inc()
	p.delegate.RecordBatchStart(batchSize)
}

func (p *PrometheusStatsCollector) RecordBatchComplete(batchSize int, duration time.Duration) {
	p.batchesCompleted.Inc()
	p.batchDuration.Observe(duration.Seconds())
	p.delegate.RecordBatchComplete(batchSize, duration)
}

func (p *PrometheusStatsCollector) RecordStateEmitted(success bool) {
	if success {
		p.statesEmitted.WithLabelValues("success").Inc()
	} else {
		p.statesEmitted.WithLabelValues("failure").Inc()
	}
	p.delegate.RecordStateEmitted(success)
}

func (p *PrometheusStatsCollector) RecordStateSpawned() {
	p.statesSpawned.Inc()
	p.delegate.RecordStateSpawned()
}

func (p *PrometheusStatsCollector) RecordSpawnCollision() {
	p.spawnCollisions.Inc()
	p.delegate.RecordSpawnCollision()
}

func (p *PrometheusStatsCollector) RecordFetchError() {
	p.fetchErrors.Inc()
	p.delegate.RecordFetchError()
}

func (p *PrometheusStatsCollector) RecordParseError() {
	p.parseErrors.Inc()
	p.delegate.RecordParseError()
}

func (p *PrometheusStatsCollector) GetStats() Stats {
	return p.delegate.GetStats()
}
