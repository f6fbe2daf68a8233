// Package gopage schedules concurrent pagination. Callers describe what to
// paginate as PagingState values (an entity type, an ID, and a cursor), give
// gopage a fetch function and a Parser that turns each fetch response into
// cursor/item updates, and gopage batches states by key, dispatches batches
// to the fetch function under a concurrency cap, and drives every state to
// a terminal cursor or an error.
//
// A minimal engine looks like:
//
//	parser := resultparser.NewSingleParser(resultparser.SingleConfig{
//		ItemsOf:  func(resp any) []any { return resp.(page).items },
//		CursorOf: func(resp any) any { return resp.(page).cursor },
//	})
//	cfg := gopage.Engine(parser,
//		gopage.WithFetchFn(fetchPage),
//		gopage.WithConcurrency(4),
//	)
//	items, err := gopage.PaginateOne(ctx, cfg, nil, "accounts", 42)
//
// PagingStates are batched by key (default: one state per batch, keyed by
// entity type) using a batcher.Batcher, so a fetch function can serve many
// concurrent cursors from a single request when the upstream API supports
// it. A Parser may also emit new PagingStates to fetch (spawns), letting one
// entity's page results seed pagination of a related entity.
package gopage
