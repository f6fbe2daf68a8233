package gopage

import (
	"context"

	"github.com/MasterOfBinary/gopage/scheduler"
)

// PaginateStream is the async front-end: the core streaming entry point
// (spec.md §6). It starts a scheduler from cfg and returns the raw
// input/output channels; the caller pushes seeds onto in and closes it
// when done seeding, then drains terminal PagingStates from out.
func PaginateStream(ctx context.Context, cfg EngineConfig, params any) (chan<- *PagingState, <-chan *PagingState) {
	return scheduler.New(cfg).Run(ctx, params)
}

// Paginate seeds the scheduler with one PagingState per key, blocks until
// every one reaches a terminal state (including any states the parser
// spawns along the way), and returns them all. It raises the first
// populated Err among the results, per spec.md §7's front-end error
// policy.
//
// Before starting the scheduler, it checks the seed count against
// cfg.Limits.MaxPendingStates and returns ErrTooManyPendingStates if the
// caller's own seed list alone would exceed it.
func Paginate(ctx context.Context, cfg EngineConfig, params any, seeds []Key) ([]*PagingState, error) {
	if err := scheduler.ValidateSeedCount(cfg, len(seeds)); err != nil {
		return nil, err
	}

	in, out := PaginateStream(ctx, cfg, params)

	go func() {
		defer close(in)
		for _, key := range seeds {
			select {
			case in <- PagingStateOf(key.EntityType, key.ID):
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]*PagingState, 0, len(seeds))
	var firstErr error
	for {
		select {
		case st, ok := <-out:
			if !ok {
				return results, firstErr
			}
			results = append(results, st)
			if st.Err != nil && firstErr == nil {
				firstErr = st.Err
			}
		case <-ctx.Done():
			return results, ctx.Err()
		}
	}
}

// PaginateColl paginates every id of one entityType and returns each
// state's accumulated items, in the same order as ids (spec.md §4.6).
// Any states the parser spawns along the way are drained to let the
// scheduler terminate, but are silently discarded from the result, per
// spec.md's documented paginate_coll behavior.
//
// Before starting the scheduler, it checks len(ids) against
// cfg.Limits.MaxPendingStates and returns ErrTooManyPendingStates if the
// caller's own ids alone would exceed it.
func PaginateColl(ctx context.Context, cfg EngineConfig, params any, entityType string, ids []any) ([][]any, error) {
	if err := scheduler.ValidateSeedCount(cfg, len(ids)); err != nil {
		return nil, err
	}

	in, out := PaginateStream(ctx, cfg, params)

	go func() {
		defer close(in)
		for _, id := range ids {
			select {
			case in <- PagingStateOf(entityType, id):
			case <-ctx.Done():
				return
			}
		}
	}()

	byKey := make(map[Key]*PagingState, len(ids))
	var firstErr error
drain:
	for {
		select {
		case st, ok := <-out:
			if !ok {
				break drain
			}
			byKey[st.Key] = st
			if st.Err != nil && firstErr == nil {
				firstErr = st.Err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := make([][]any, len(ids))
	for i, id := range ids {
		if st, ok := byKey[Key{EntityType: entityType, ID: id}]; ok {
			results[i] = st.Items
		}
	}
	return results, firstErr
}

// PaginateOne is PaginateColl for a single id, returning its accumulated
// items directly.
func PaginateOne(ctx context.Context, cfg EngineConfig, params any, entityType string, id any) ([]any, error) {
	results, err := PaginateColl(ctx, cfg, params, entityType, []any{id})
	if len(results) == 0 {
		return nil, err
	}
	return results[0], err
}
