package resultparser

import "github.com/MasterOfBinary/gopage/pagingstate"

// SpawnPredicate decides whether a spawned PagingState should be kept.
// Return true to keep it, false to drop it before it reaches the
// scheduler.
type SpawnPredicate func(s *pagingstate.PagingState) bool

// FilterSpawns wraps a Parser so that spawned states not matching predicate
// are dropped before the scheduler ever sees them. This is useful when a
// parser's SpawnsOf extractor is shared across callers with different
// appetite for follow-on work (e.g. only spawn account_repos for accounts
// above some activity threshold).
func FilterSpawns(p Parser, predicate SpawnPredicate) Parser {
	if predicate == nil {
		return p
	}

	return ParserFunc(func(resp any, batch []*pagingstate.PagingState) (BatchResult, error) {
		result, err := p.Parse(resp, batch)
		if err != nil {
			return result, err
		}
		if len(result.Spawns) == 0 {
			return result, nil
		}

		kept := make([]*pagingstate.PagingState, 0, len(result.Spawns))
		for _, s := range result.Spawns {
			if predicate(s) {
				kept = append(kept, s)
			}
		}
		result.Spawns = kept
		return result, nil
	})
}
