package resultparser

import "github.com/MasterOfBinary/gopage/pagingstate"

// StateUpdate is one state's worth of update data extracted from a
// multi-state fetch response: the entity type and id the update applies
// to, the items to append, and the cursor for the next page (nil cursor
// means "no further pages").
type StateUpdate struct {
	EntityType string
	ID         any
	Items      []any
	Cursor     any
}

// StatesOfFunc extracts one StateUpdate per entity mentioned in a
// multi-state fetch response. States in the batch that the response does
// not mention implicitly get empty items and a done cursor.
type StatesOfFunc func(resp any) []StateUpdate

// MultiConfig configures a multi-state parser (the Go rendering of
// result_parser from the spec). StatesOf is required; SpawnsOf is
// optional.
type MultiConfig struct {
	StatesOf StatesOfFunc
	SpawnsOf SpawnsOfFunc
}

// NewParser builds a Parser for fetch functions whose responses cover
// several PagingStates from one batch at once (e.g. a bulk API call).
// Any state in the batch not mentioned by StatesOf is treated as done with
// no new items, per the spec's "unmentioned states" convention.
func NewParser(cfg MultiConfig) Parser {
	return ParserFunc(func(resp any, batch []*pagingstate.PagingState) (BatchResult, error) {
		result := BatchResult{
			Cursors: make(map[pagingstate.Key]pagingstate.Cursor, len(batch)),
			Items:   make(map[pagingstate.Key][]any, len(batch)),
		}

		// Default every batch member to done/no-items; StatesOf overrides
		// explicitly mentioned ones below.
		for _, s := range batch {
			result.Cursors[s.Key] = pagingstate.Done()
		}

		if cfg.StatesOf != nil {
			for _, u := range cfg.StatesOf(resp) {
				key := pagingstate.Key{EntityType: u.EntityType, ID: u.ID}
				result.Items[key] = u.Items
				result.Cursors[key] = pagingstate.Next(u.Cursor)
			}
		}

		if cfg.SpawnsOf != nil {
			result.Spawns = cfg.SpawnsOf(resp)
		}

		return result, nil
	})
}
