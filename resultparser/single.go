package resultparser

import "github.com/MasterOfBinary/gopage/pagingstate"

// ItemsOfFunc extracts the items returned by a single-state fetch response.
type ItemsOfFunc func(resp any) []any

// CursorOfFunc extracts the next cursor from a single-state fetch response.
// A nil return means "no further pages".
type CursorOfFunc func(resp any) any

// SpawnsOfFunc extracts any new paging states to inject, from a
// single-state fetch response. May return nil.
type SpawnsOfFunc func(resp any) []*pagingstate.PagingState

// SingleConfig configures a single-state parser (the Go rendering of
// result_parser1 from the spec). All three extractors may be nil: a nil
// ItemsOf appends no items, a nil CursorOf marks the state done after this
// page, and a nil SpawnsOf spawns nothing.
type SingleConfig struct {
	ItemsOf  ItemsOfFunc
	CursorOf CursorOfFunc
	SpawnsOf SpawnsOfFunc
}

// NewSingleParser builds a Parser for fetch functions that always send
// exactly one PagingState per batch. Parse fails with ErrInvalidBatchSize
// if handed a batch with more than one member.
func NewSingleParser(cfg SingleConfig) Parser {
	return ParserFunc(func(resp any, batch []*pagingstate.PagingState) (BatchResult, error) {
		if len(batch) > 1 {
			return BatchResult{}, ErrInvalidBatchSize
		}

		result := BatchResult{
			Cursors: make(map[pagingstate.Key]pagingstate.Cursor, 1),
			Items:   make(map[pagingstate.Key][]any, 1),
		}

		if len(batch) == 0 {
			return result, nil
		}
		key := batch[0].Key

		if cfg.ItemsOf != nil {
			result.Items[key] = cfg.ItemsOf(resp)
		}

		cursor := pagingstate.Done()
		if cfg.CursorOf != nil {
			cursor = pagingstate.Next(cfg.CursorOf(resp))
		}
		result.Cursors[key] = cursor

		if cfg.SpawnsOf != nil {
			result.Spawns = cfg.SpawnsOf(resp)
		}

		return result, nil
	})
}
