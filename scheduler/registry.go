package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/MasterOfBinary/gopage/fetchexecutor"
	"github.com/MasterOfBinary/gopage/pagingstate"
)

// Registry is the default fetch_fn: a mutex-guarded map from entity type to
// handler, generalized from the teacher's DynamicConfig
// (batch/config.go), which guards its tunable values with the same
// sync.RWMutex shape. An EngineConfig with no explicit FetchFn dispatches
// through a Registry by the batch members' entity type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]fetchexecutor.Fetch
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]fetchexecutor.Fetch)}
}

// Register installs fn as the fetch handler for entityType, replacing any
// previous handler.
func (r *Registry) Register(entityType string, fn fetchexecutor.Fetch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[entityType] = fn
}

// Lookup returns the handler for entityType, if any.
func (r *Registry) Lookup(entityType string) (fetchexecutor.Fetch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[entityType]
	return fn, ok
}

// Fetch implements fetchexecutor.Fetch by dispatching to the registered
// handler for the batch's entity type. Every member of a batch shares a
// batch key, and by default the batch key is the entity type, so looking
// at the first member is sufficient. An unregistered entity type surfaces
// as a FetchFailure at dispatch time (UnknownDispatch in the spec).
func (r *Registry) Fetch(ctx context.Context, params any, members []*pagingstate.PagingState) (any, error) {
	if len(members) == 0 {
		return nil, nil
	}

	entityType := members[0].Key.EntityType
	fn, ok := r.Lookup(entityType)
	if !ok {
		return nil, fmt.Errorf("scheduler: no fetch handler registered for entity type %q", entityType)
	}
	return fn(ctx, params, members)
}
