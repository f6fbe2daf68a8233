package fetchexecutor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/MasterOfBinary/gopage/fetchexecutor"
)

func TestTrySubmit_RespectsConcurrencyCap(t *testing.T) {
	e := New(context.Background(), 3)

	var active int32
	var maxActive int32
	var mu sync.Mutex
	release := make(chan struct{})
	var wg sync.WaitGroup

	submit := func() bool {
		return e.TrySubmit(func(ctx context.Context) {
			defer wg.Done()
			n := atomic.AddInt32(&active, 1)

			mu.Lock()
			if n > maxActive {
				maxActive = n
			}
			mu.Unlock()

			<-release
			atomic.AddInt32(&active, -1)
		})
	}

	for i := 0; i < 3; i++ {
		wg.Add(1)
		if !submit() {
			t.Fatalf("expected submit %d to succeed", i)
		}
	}

	if submit() {
		t.Fatal("expected submit to fail once at the concurrency cap")
	}
	if got := e.InFlight(); got != 3 {
		t.Errorf("InFlight() = %d, want 3", got)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxActive > 3 {
		t.Errorf("observed max in-flight %d exceeds cap of 3", maxActive)
	}
}

func TestTrySubmit_FreesSlotOnCompletion(t *testing.T) {
	e := New(context.Background(), 1)

	done := make(chan struct{})
	if !e.TrySubmit(func(ctx context.Context) { close(done) }) {
		t.Fatal("expected first submit to succeed")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	// Give the executor a moment to decrement InFlight after the task
	// returns.
	deadline := time.Now().Add(time.Second)
	for e.InFlight() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if !e.TrySubmit(func(ctx context.Context) {}) {
		t.Fatal("expected a slot to free up after the first task completed")
	}
}
