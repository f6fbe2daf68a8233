// Package pagingstate defines the per-entity pagination progress record that
// flows through the scheduler, batcher, and fetch executor.
package pagingstate

import "fmt"

// CursorState is the three-state tag for a PagingState's pagination cursor.
type CursorState int

const (
	// CursorNeverFetched means the state has not yet had a page fetched for
	// it. The initial request must use the caller's base params.
	CursorNeverFetched CursorState = iota
	// CursorDone means pagination is complete for this state. A state in
	// this cursor state is terminal and will never be dispatched again.
	CursorDone
	// CursorNext means at least one page has been fetched, and Value holds
	// the opaque cursor to use for the next fetch.
	CursorNext
)

// String implements fmt.Stringer for debugging and log output.
func (c CursorState) String() string {
	switch c {
	case CursorNeverFetched:
		return "NeverFetched"
	case CursorDone:
		return "Done"
	case CursorNext:
		return "Next"
	default:
		return "Unknown"
	}
}

// Cursor is the tagged variant used instead of a sentinel nil to represent
// the three-state cursor described by the scheduler's paging convention:
// never fetched, done, or next(value).
type Cursor struct {
	State CursorState
	// Value holds the opaque next-page cursor. Only meaningful when
	// State == CursorNext.
	Value any
}

// Done returns the terminal Done cursor.
func Done() Cursor { return Cursor{State: CursorDone} }

// Next returns a cursor carrying the opaque value to request the next page.
// A nil value is the same as Done, since the parser convention treats a
// missing or nil cursor as "no further pages".
func Next(value any) Cursor {
	if value == nil {
		return Done()
	}
	return Cursor{State: CursorNext, Value: value}
}

// Key identifies a PagingState. EntityType is an opaque tag for the kind of
// entity being paginated; ID is an opaque identifier unique within that
// type. ID may be nil for singleton collections (e.g. "all accounts"); a nil
// ID is a distinct, valid key, the same as a nil interface{} map key in Go.
//
// Key must be comparable so it can be used as a map key; callers are
// responsible for choosing EntityType/ID values that satisfy Go's
// comparability rules (no slices, maps, or funcs).
type Key struct {
	EntityType string
	ID         any
}

// String renders the key for logging and error messages.
func (k Key) String() string {
	return fmt.Sprintf("%s/%v", k.EntityType, k.ID)
}

// PagingState tracks one entity's pagination progress: how many pages have
// been fetched, the items accumulated so far, the current cursor, and any
// terminal error.
//
// Only the scheduler package mutates a PagingState after construction; all
// other packages treat it as read-only.
type PagingState struct {
	Key Key

	// Pages is the number of completed fetches for this state.
	// Pages == 0 iff Cursor.State == CursorNeverFetched.
	Pages uint64

	// Items accumulates values across pages, in fetch order. Append-only.
	Items []any

	// Cursor is the current pagination cursor; see CursorState.
	Cursor Cursor

	// Err is set when a fetch or parse failed for this state. A state with
	// Err populated is terminal regardless of Cursor.
	Err error
}

// New constructs an initial PagingState for the given entity type and id,
// with zero pages, no items, and a never-fetched cursor.
func New(entityType string, id any) *PagingState {
	return &PagingState{
		Key:    Key{EntityType: entityType, ID: id},
		Cursor: Cursor{State: CursorNeverFetched},
	}
}

// Terminal reports whether the state is done being dispatched: either its
// cursor has reached CursorDone, or it carries a terminal error.
func (s *PagingState) Terminal() bool {
	return s.Err != nil || s.Cursor.State == CursorDone
}
