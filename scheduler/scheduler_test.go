package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MasterOfBinary/gopage/batcher"
	"github.com/MasterOfBinary/gopage/pagingstate"
	"github.com/MasterOfBinary/gopage/resultparser"
	. "github.com/MasterOfBinary/gopage/scheduler"
)

type page struct {
	items []any
	next  any
}

func singleParser() resultparser.Parser {
	return resultparser.NewSingleParser(resultparser.SingleConfig{
		ItemsOf:  func(resp any) []any { return resp.(page).items },
		CursorOf: func(resp any) any { return resp.(page).next },
	})
}

func drain(t *testing.T, out <-chan *pagingstate.PagingState, n int, timeout time.Duration) []*pagingstate.PagingState {
	t.Helper()
	results := make([]*pagingstate.PagingState, 0, n)
	deadline := time.After(timeout)
	for len(results) < n {
		select {
		case st, ok := <-out:
			if !ok {
				t.Fatalf("output closed early with %d/%d results", len(results), n)
			}
			results = append(results, st)
		case <-deadline:
			t.Fatalf("timed out after %d/%d results", len(results), n)
		}
	}
	return results
}

func TestScheduler_LinearPaginationSingleState(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	fetch := func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n < 3 {
			return page{items: []any{n}, next: n}, nil
		}
		return page{items: []any{n}}, nil
	}

	cfg := EngineConfig{Parser: singleParser(), FetchFn: fetch}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("accounts", 1)
	close(in)

	results := drain(t, out, 1, 2*time.Second)
	st := results[0]
	if st.Err != nil {
		t.Fatalf("unexpected error: %v", st.Err)
	}
	if st.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", st.Pages)
	}
	if len(st.Items) != 3 {
		t.Fatalf("expected 3 items, got %v", st.Items)
	}
}

func TestScheduler_MaxConcurrencyCap(t *testing.T) {
	const concurrency = 2
	var active, maxActive int64
	release := make(chan struct{})

	fetch := func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
		n := atomic.AddInt64(&active, 1)
		for {
			old := atomic.LoadInt64(&maxActive)
			if n <= old || atomic.CompareAndSwapInt64(&maxActive, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt64(&active, -1)
		return page{}, nil
	}

	cfg := EngineConfig{
		Parser:         singleParser(),
		FetchFn:        fetch,
		MaxConcurrency: concurrency,
	}
	in, out := New(cfg).Run(context.Background(), nil)

	for i := 0; i < 5; i++ {
		in <- pagingstate.New(fmt.Sprintf("type%d", i), 1)
	}
	close(in)

	// Give the coordinator time to fan out as many batches as its cap
	// allows before letting any of them finish.
	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt64(&active); got != concurrency {
		t.Fatalf("expected exactly %d concurrently active fetches, got %d", concurrency, got)
	}

	close(release)
	drain(t, out, 5, 2*time.Second)

	if got := atomic.LoadInt64(&maxActive); got > concurrency {
		t.Fatalf("concurrency cap violated: saw %d active at once, want <= %d", got, concurrency)
	}
}

func TestScheduler_SortedBatcherDispatchOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	fetch := func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
		mu.Lock()
		order = append(order, members[0].Key.EntityType)
		mu.Unlock()
		return page{}, nil
	}

	cfg := EngineConfig{
		Parser:         singleParser(),
		FetchFn:        fetch,
		MaxConcurrency: 1,
		IdleFlush:      10 * time.Millisecond,
		Batcher: batcher.NewConstantConfig(batcher.Values{
			Sorted:   true,
			MaxItems: 10, // never reached by a single state; forces idle-flush promotion
			KeyFunc:  batcher.ByEntityType,
		}),
	}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("c", 1)
	in <- pagingstate.New("a", 1)
	in <- pagingstate.New("b", 1)
	close(in)

	drain(t, out, 3, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected dispatch order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected dispatch order %v, got %v", want, order)
		}
	}
}

func TestScheduler_FetchErrorAttachedToEveryMember(t *testing.T) {
	fetchErr := errors.New("upstream exploded")
	fetch := func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
		return nil, fetchErr
	}

	cfg := EngineConfig{
		Parser:  singleParser(),
		FetchFn: fetch,
	}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("accounts", 1)
	close(in)

	results := drain(t, out, 1, time.Second)
	st := results[0]
	if st.Err == nil {
		t.Fatal("expected fetch error to be attached")
	}
	var ferr *FetchError
	if !errors.As(st.Err, &ferr) {
		t.Fatalf("expected *FetchError, got %T: %v", st.Err, st.Err)
	}
	if !errors.Is(st.Err, fetchErr) {
		t.Fatalf("expected wrapped error to unwrap to fetchErr, got %v", st.Err)
	}
}

func TestScheduler_SpawnedStatesAreFetched(t *testing.T) {
	cfg := EngineConfig{
		Parser: resultparser.NewSingleParser(resultparser.SingleConfig{
			ItemsOf: func(resp any) []any { return resp.(spawningPage).items },
			SpawnsOf: func(resp any) []*pagingstate.PagingState {
				return resp.(spawningPage).spawns
			},
		}),
		FetchFn: func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
			st := members[0]
			if st.Key.EntityType == "accounts" {
				spawn := pagingstate.New("account_repos", st.Key.ID)
				return spawningPage{spawns: []*pagingstate.PagingState{spawn}}, nil
			}
			return spawningPage{}, nil
		},
	}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("accounts", 42)
	close(in)

	results := drain(t, out, 2, 2*time.Second)

	var sawAccount, sawRepo bool
	for _, st := range results {
		switch st.Key.EntityType {
		case "accounts":
			sawAccount = true
		case "account_repos":
			sawRepo = true
			if st.Key.ID != 42 {
				t.Fatalf("expected spawned state id 42, got %v", st.Key.ID)
			}
		}
	}
	if !sawAccount || !sawRepo {
		t.Fatalf("expected both the seed and its spawn to terminate, got %+v", results)
	}
}

// spawningPage is a fetch response that can also carry spawns, used by
// TestScheduler_SpawnedStatesAreFetched and
// TestScheduler_SpawnCollisionIsDroppedAndCounted.
type spawningPage struct {
	items  []any
	spawns []*pagingstate.PagingState
}

func TestScheduler_SpawnCollisionIsDroppedAndCounted(t *testing.T) {
	stats := NewBasicStatsCollector()

	fetch := func(_ context.Context, _ any, members []*pagingstate.PagingState) (any, error) {
		st := members[0]
		// Always tries to spawn a sibling with the same key as itself,
		// which is already in the seen set the moment it was queued.
		spawn := pagingstate.New(st.Key.EntityType, st.Key.ID)
		return spawningPage{spawns: []*pagingstate.PagingState{spawn}}, nil
	}

	cfg := EngineConfig{
		Parser: resultparser.NewSingleParser(resultparser.SingleConfig{
			ItemsOf:  func(resp any) []any { return resp.(spawningPage).items },
			SpawnsOf: func(resp any) []*pagingstate.PagingState { return resp.(spawningPage).spawns },
		}),
		FetchFn: fetch,
		Stats:   stats,
	}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("accounts", 1)
	close(in)

	drain(t, out, 1, time.Second)

	if got := stats.GetStats().SpawnCollisions; got != 1 {
		t.Fatalf("expected 1 recorded spawn collision, got %d", got)
	}
}

func TestScheduler_ParseErrorAttachedToEveryMember(t *testing.T) {
	parseErr := errors.New("malformed response")
	parser := resultparser.ParserFunc(func(resp any, batch []*pagingstate.PagingState) (resultparser.BatchResult, error) {
		return resultparser.BatchResult{}, parseErr
	})

	cfg := EngineConfig{
		Parser:  parser,
		FetchFn: func(_ context.Context, _ any, _ []*pagingstate.PagingState) (any, error) { return page{}, nil },
	}
	in, out := New(cfg).Run(context.Background(), nil)

	in <- pagingstate.New("accounts", 1)
	close(in)

	results := drain(t, out, 1, time.Second)
	st := results[0]

	var perr *ParseError
	if !errors.As(st.Err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", st.Err, st.Err)
	}
}
