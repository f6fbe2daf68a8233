// Package resultparser defines the contract the caller implements to turn a
// fetch response into per-state cursor/item updates and newly spawned
// paging states, plus two convenience builders for the common shapes.
package resultparser

import (
	"errors"

	"github.com/MasterOfBinary/gopage/pagingstate"
)

// ErrInvalidBatchSize is returned by a single-state parser (built with
// NewSingleParser) when it is handed a batch with more than one member.
var ErrInvalidBatchSize = errors.New("resultparser: batch has more than one member")

// BatchResult is what a Parser returns for one fetch response: the next
// cursor and new items per state in the batch, plus any freshly spawned
// states to inject into the scheduler.
//
// A state's Key missing from Cursors means "no further pages" (equivalent
// to an explicit pagingstate.Done() cursor). A state's Key missing from
// Items means no items were appended that round.
type BatchResult struct {
	Cursors map[pagingstate.Key]pagingstate.Cursor
	Items   map[pagingstate.Key][]any
	Spawns  []*pagingstate.PagingState
}

// Parser extracts a BatchResult from one fetch response, given the
// PagingStates that were sent in that batch (in dispatch order).
type Parser interface {
	Parse(resp any, batch []*pagingstate.PagingState) (BatchResult, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(resp any, batch []*pagingstate.PagingState) (BatchResult, error)

// Parse implements Parser.
func (f ParserFunc) Parse(resp any, batch []*pagingstate.PagingState) (BatchResult, error) {
	return f(resp, batch)
}
