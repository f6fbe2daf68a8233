package batcher_test

import (
	"testing"

	. "github.com/MasterOfBinary/gopage/batcher"
	"github.com/MasterOfBinary/gopage/pagingstate"
)

func TestAdd_BecomesReadyAtMaxItems(t *testing.T) {
	b := New(NewConstantConfig(Values{MaxItems: 2, KeyFunc: ByEntityType}))

	b.Add(pagingstate.New("x", 1))
	if _, ok := b.PopReady(); ok {
		t.Fatal("batch should not be ready with only 1/2 members")
	}

	b.Add(pagingstate.New("x", 2))
	batch, ok := b.PopReady()
	if !ok {
		t.Fatal("batch should be ready at MaxItems")
	}
	if len(batch.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(batch.Members))
	}
}

func TestEmptyBatchNotRetained(t *testing.T) {
	b := New(NewConstantConfig(Values{MaxItems: 1}))
	b.Add(pagingstate.New("x", 1))

	if _, ok := b.PopReady(); !ok {
		t.Fatal("expected a ready batch")
	}
	if !b.Empty() {
		t.Error("batcher should be empty after popping its only batch")
	}
}

func TestForceFlush_PromotesFormingBatch(t *testing.T) {
	b := New(NewConstantConfig(Values{MaxItems: 5}))
	b.Add(pagingstate.New("x", 1))

	if _, ok := b.PopReady(); ok {
		t.Fatal("batch should still be forming")
	}
	if !b.ForceFlush() {
		t.Fatal("expected ForceFlush to promote the forming batch")
	}
	if _, ok := b.PopReady(); !ok {
		t.Fatal("expected the forced batch to be ready")
	}
}

func TestForceFlush_NoOpWhenEmpty(t *testing.T) {
	b := New(NewConstantConfig(Values{MaxItems: 1}))
	if b.ForceFlush() {
		t.Error("ForceFlush should return false on an empty batcher")
	}
}

// TestSortedDispatchOrder is scenario S6 from the spec: three seeds with
// batch keys c, a, b arrive together; a sorted batcher with MaxItems=1
// makes each its own Ready batch and dispatches a, then b, then c.
func TestSortedDispatchOrder(t *testing.T) {
	keyFunc := func(s *pagingstate.PagingState) any { return s.Key.ID }
	b := New(NewConstantConfig(Values{Sorted: true, MaxItems: 1, KeyFunc: keyFunc}))

	b.Add(pagingstate.New("x", "c"))
	b.Add(pagingstate.New("x", "a"))
	b.Add(pagingstate.New("x", "b"))

	var order []string
	for i := 0; i < 3; i++ {
		batch, ok := b.PopReady()
		if !ok {
			t.Fatalf("expected a ready batch on iteration %d", i)
		}
		order = append(order, batch.Key.(string))
	}

	want := []string{"a", "b", "c"}
	for i, k := range want {
		if order[i] != k {
			t.Errorf("dispatch order = %v, want %v", order, want)
		}
	}
}

func TestPerStateBelongsToAtMostOneBatch(t *testing.T) {
	b := New(NewConstantConfig(Values{MaxItems: 10}))
	s := pagingstate.New("x", 1)
	b.Add(s)

	batch, _ := b.PopReady() // MaxItems not reached, nothing ready yet
	if batch != nil {
		t.Fatal("unexpected ready batch")
	}
	b.ForceFlush()
	got, ok := b.PopReady()
	if !ok || len(got.Members) != 1 || got.Members[0] != s {
		t.Fatalf("expected exactly one batch containing s once, got %+v", got)
	}
}
