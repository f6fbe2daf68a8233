package resultparser_test

import (
	"errors"
	"testing"

	"github.com/MasterOfBinary/gopage/pagingstate"
	. "github.com/MasterOfBinary/gopage/resultparser"
)

type page struct {
	items  []any
	cursor any
}

func TestSingleParser_LinearPagination(t *testing.T) {
	p := NewSingleParser(SingleConfig{
		ItemsOf:  func(resp any) []any { return resp.(page).items },
		CursorOf: func(resp any) any { return resp.(page).cursor },
	})

	s := pagingstate.New("items", nil)
	result, err := p.Parse(page{items: []any{1, 2}, cursor: "offset=2"}, []*pagingstate.PagingState{s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := result.Items[s.Key]
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %v", got)
	}

	cursor := result.Cursors[s.Key]
	if cursor.State != pagingstate.CursorNext || cursor.Value != "offset=2" {
		t.Errorf("expected next cursor offset=2, got %+v", cursor)
	}
}

func TestSingleParser_DoneWhenCursorNil(t *testing.T) {
	p := NewSingleParser(SingleConfig{
		ItemsOf:  func(resp any) []any { return nil },
		CursorOf: func(resp any) any { return nil },
	})

	s := pagingstate.New("items", nil)
	result, err := p.Parse(page{}, []*pagingstate.PagingState{s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cursors[s.Key].State != pagingstate.CursorDone {
		t.Errorf("expected done cursor, got %+v", result.Cursors[s.Key])
	}
}

func TestSingleParser_RejectsMultiMemberBatch(t *testing.T) {
	p := NewSingleParser(SingleConfig{})

	batch := []*pagingstate.PagingState{
		pagingstate.New("items", 1),
		pagingstate.New("items", 2),
	}

	_, err := p.Parse(page{}, batch)
	if !errors.Is(err, ErrInvalidBatchSize) {
		t.Fatalf("expected ErrInvalidBatchSize, got %v", err)
	}
}

func TestMultiParser_UnmentionedStatesDefaultToDone(t *testing.T) {
	p := NewParser(MultiConfig{
		StatesOf: func(resp any) []StateUpdate {
			return []StateUpdate{
				{EntityType: "accounts", ID: "a", Items: []any{"repo1"}, Cursor: "next"},
			}
		},
	})

	mentioned := pagingstate.New("accounts", "a")
	unmentioned := pagingstate.New("accounts", "b")

	result, err := p.Parse(nil, []*pagingstate.PagingState{mentioned, unmentioned})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c := result.Cursors[mentioned.Key]; c.State != pagingstate.CursorNext || c.Value != "next" {
		t.Errorf("mentioned state cursor = %+v", c)
	}
	if c := result.Cursors[unmentioned.Key]; c.State != pagingstate.CursorDone {
		t.Errorf("unmentioned state should default to done, got %+v", c)
	}
	if items := result.Items[unmentioned.Key]; items != nil {
		t.Errorf("unmentioned state should have no items, got %v", items)
	}
}

func TestFilterSpawns(t *testing.T) {
	base := NewSingleParser(SingleConfig{
		SpawnsOf: func(resp any) []*pagingstate.PagingState {
			return []*pagingstate.PagingState{
				pagingstate.New("account_repos", "active-account"),
				pagingstate.New("account_repos", "inactive-account"),
			}
		},
	})

	filtered := FilterSpawns(base, func(s *pagingstate.PagingState) bool {
		return s.Key.ID == "active-account"
	})

	result, err := filtered.Parse(page{}, []*pagingstate.PagingState{pagingstate.New("accounts", nil)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Spawns) != 1 || result.Spawns[0].Key.ID != "active-account" {
		t.Fatalf("expected only the active-account spawn to survive, got %v", result.Spawns)
	}
}

func TestWithItemTransform(t *testing.T) {
	base := NewSingleParser(SingleConfig{
		ItemsOf: func(resp any) []any { return []any{"1", "2"} },
	})

	s := pagingstate.New("items", nil)
	transformed := WithItemTransform(base, func(item any) (any, error) {
		return item.(string) + "!", nil
	})

	result, err := transformed.Parse(page{}, []*pagingstate.PagingState{s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"1!", "2!"}
	got := result.Items[s.Key]
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWithItemTransform_PropagatesError(t *testing.T) {
	base := NewSingleParser(SingleConfig{
		ItemsOf: func(resp any) []any { return []any{"bad"} },
	})

	boom := errors.New("boom")
	transformed := WithItemTransform(base, func(item any) (any, error) {
		return nil, boom
	})

	_, err := transformed.Parse(page{}, []*pagingstate.PagingState{pagingstate.New("items", nil)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
}
