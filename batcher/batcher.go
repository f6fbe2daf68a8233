// Package batcher groups pending PagingStates into batches by a
// caller-supplied key, handing complete batches back to the scheduler in
// either arrival order or deterministic ascending-key order.
package batcher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/MasterOfBinary/gopage/pagingstate"
)

// Status is a batch's lifecycle stage.
type Status int

const (
	// Forming means the batch has not yet reached Config.MaxItems.
	Forming Status = iota
	// Ready means the batch is eligible for dispatch.
	Ready
)

// Batch is a transient grouping of PagingStates sharing a batch key.
type Batch struct {
	Key     any
	Members []*pagingstate.PagingState
	Status  Status
}

// Batcher accepts PagingStates as they become ready for (another) fetch and
// hands back complete batches to the scheduler.
type Batcher interface {
	// Add appends s to the batch for its key, creating one if necessary.
	// The batch becomes Ready once it reaches Config.MaxItems.
	Add(s *pagingstate.PagingState)

	// PopReady removes and returns a Ready batch, if any. With a sorted
	// batcher, ties among Ready batches are broken by ascending key.
	PopReady() (*Batch, bool)

	// ForceFlush promotes exactly one non-empty Forming batch to Ready,
	// the smallest-keyed one if sorted, used by the scheduler's idle
	// timeout so partial batches aren't starved forever.
	ForceFlush() bool

	// Empty reports whether no batch holds any members.
	Empty() bool
}

// New returns a Batcher honoring cfg. cfg.Get() is consulted on every Add
// and every PopReady/ForceFlush, so a Config implementation such as
// DynamicConfig can change sizing at runtime.
func New(cfg Config) Batcher {
	if cfg == nil {
		cfg = NewConstantConfig(Values{})
	}
	return &batcherImpl{
		cfg:     cfg,
		batches: make(map[any]*Batch),
	}
}

// batcherImpl is the single implementation backing both sorted and
// unordered modes; the mode only affects how PopReady/ForceFlush pick among
// multiple eligible batches. A PagingState belongs to at most one batch at
// a time, and an empty batch is never retained: Add only creates a batch
// together with its first member, and PopReady removes a batch's key from
// the map when it hands the whole batch out.
type batcherImpl struct {
	mu      sync.Mutex
	cfg     Config
	batches map[any]*Batch
	order   []any // insertion order of live keys, for unordered tie-breaks
}

func (b *batcherImpl) Add(s *pagingstate.PagingState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := b.cfg.Get().fixed()
	key := values.KeyFunc(s)

	batch, ok := b.batches[key]
	if !ok {
		batch = &Batch{Key: key}
		b.batches[key] = batch
		b.order = append(b.order, key)
	}

	batch.Members = append(batch.Members, s)
	if len(batch.Members) >= values.MaxItems {
		batch.Status = Ready
	}
}

func (b *batcherImpl) PopReady() (*Batch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := b.pickLocked(Ready)
	if !ok {
		return nil, false
	}
	return b.removeLocked(key), true
}

func (b *batcherImpl) ForceFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := b.pickLocked(Forming)
	if !ok {
		return false
	}
	b.batches[key].Status = Ready
	return true
}

func (b *batcherImpl) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batches) == 0
}

// pickLocked finds the key of a batch in the given status, applying the
// sorted/unordered tie-break policy. Must be called with b.mu held.
func (b *batcherImpl) pickLocked(status Status) (any, bool) {
	sorted := b.cfg.Get().Sorted

	var best any
	var found bool
	for _, key := range b.order {
		batch, ok := b.batches[key]
		if !ok || batch.Status != status || len(batch.Members) == 0 {
			continue
		}
		if !sorted {
			return key, true
		}
		if !found || lessKey(key, best) {
			best = key
			found = true
		}
	}
	return best, found
}

// removeLocked deletes key's batch from the map and insertion-order slice
// and returns it. Must be called with b.mu held.
func (b *batcherImpl) removeLocked(key any) *Batch {
	batch := b.batches[key]
	delete(b.batches, key)

	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return batch
}

// lessKey orders two batch keys for the sorted batcher. Keys must be one of
// the ordered built-in kinds; any other type panics with a clear message,
// since a sorted batcher with incomparable keys is a caller configuration
// error, not a runtime condition to recover from silently.
func lessKey(a, b any) bool {
	switch av := a.(type) {
	case string:
		return av < b.(string)
	case int:
		return av < b.(int)
	case int32:
		return av < b.(int32)
	case int64:
		return av < b.(int64)
	case uint:
		return av < b.(uint)
	case uint32:
		return av < b.(uint32)
	case uint64:
		return av < b.(uint64)
	case float64:
		return av < b.(float64)
	default:
		panic(fmt.Sprintf("batcher: sorted batcher requires an orderable key, got %T", a))
	}
}

// Keys returns a stable, sorted snapshot of the batcher's live keys.
// Intended for diagnostics and tests, not the dispatch hot path.
func Keys(b Batcher) []any {
	impl, ok := b.(*batcherImpl)
	if !ok {
		return nil
	}

	impl.mu.Lock()
	defer impl.mu.Unlock()

	keys := make([]any, 0, len(impl.batches))
	for _, k := range impl.order {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys
}
