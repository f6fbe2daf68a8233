package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MasterOfBinary/gopage/batcher"
	"github.com/MasterOfBinary/gopage/fetchexecutor"
	"github.com/MasterOfBinary/gopage/pagingstate"
)

// Scheduler is the central single-writer coordinator described in the
// spec's §4.5: it owns the batcher and pending/in-flight bookkeeping, and
// is the only thing that mutates a PagingState once queued. Fetches run
// off-loop on a fetchexecutor.Executor; their outcomes are posted back as
// completion events. Directly generalizes the teacher's
// doReader/doProcessors/waitForItems trio in batch/batch.go from a generic
// Item pipeline to PagingState pagination.
type Scheduler struct {
	cfg EngineConfig
}

// New validates and defaults cfg, returning a Scheduler ready to Run.
func New(cfg EngineConfig) *Scheduler {
	return &Scheduler{cfg: cfg.WithDefaults()}
}

// completionEvent is what a fetch task posts back to the coordinator when
// it finishes, regardless of success or failure.
type completionEvent struct {
	batch    *batcher.Batch
	resp     any
	err      error
	duration time.Duration
}

// Run starts the scheduler and returns the input and output channels
// described by paginate_stream in the spec: push PagingStates onto in and
// close it when done seeding; drain terminal PagingStates from out until it
// closes.
//
// Run terminates its internal coordinator goroutine (and closes out) once
// in has been closed and no states remain queued or in-flight. If in is
// never closed, the coordinator runs forever, per the spec's documented
// non-termination hazard. Canceling ctx also stops the coordinator, as a
// safety net beyond what the spec requires; per-fetch cancellation
// semantics remain the fetch function's own responsibility.
func (s *Scheduler) Run(ctx context.Context, params any) (chan<- *pagingstate.PagingState, <-chan *pagingstate.PagingState) {
	cfg := s.cfg

	in := make(chan *pagingstate.PagingState, DefaultInputBuf)
	out := make(chan *pagingstate.PagingState, cfg.ResultBuf)

	b := batcher.New(cfg.Batcher)
	exec := fetchexecutor.New(ctx, cfg.MaxConcurrency)
	rt := newResourceTracker(cfg.Limits)
	completions := make(chan completionEvent, cfg.MaxConcurrency)

	runID := uuid.NewString()
	go coordinate(ctx, cfg, runID, params, in, out, b, exec, rt, completions)

	return in, out
}

func coordinate(
	ctx context.Context,
	cfg EngineConfig,
	runID string,
	params any,
	input <-chan *pagingstate.PagingState,
	output chan<- *pagingstate.PagingState,
	b batcher.Batcher,
	exec *fetchexecutor.Executor,
	rt *resourceTracker,
	completions chan completionEvent,
) {
	defer close(output)

	seen := make(map[pagingstate.Key]struct{})
	inputClosed := false
	inFlightBatches := 0

	idle := time.NewTimer(cfg.IdleFlush)
	defer idle.Stop()

	cfg.Logger.Info("[run %s] scheduler started", runID)
	defer cfg.Logger.Info("[run %s] scheduler terminated", runID)

	emit := func(st *pagingstate.PagingState) {
		rt.release(1)
		cfg.Stats.RecordStateEmitted(st.Err == nil)
		select {
		case output <- st:
		case <-ctx.Done():
		}
	}

	// addSeed admits a freshly arrived (non-spawned) PagingState. Per the
	// spec, duplicate seeds get undefined merging; here the first one wins
	// and later duplicates are dropped, the same deterministic policy used
	// for spawn collisions.
	addSeed := func(st *pagingstate.PagingState) {
		if _, dup := seen[st.Key]; dup {
			cfg.Logger.Warn("[run %s] duplicate input state %s ignored", runID, st.Key)
			return
		}
		if !rt.canAdmit(1) {
			st.Err = &FetchError{Key: st.Key, Err: context.DeadlineExceeded}
			cfg.Logger.Error("[run %s] rejecting %s: pending state limit reached", runID, st.Key)
			rt.admit(1) // balanced by the release in emit
			emit(st)
			return
		}
		seen[st.Key] = struct{}{}
		rt.admit(1)
		b.Add(st)
	}

	addSpawn := func(st *pagingstate.PagingState) {
		if _, dup := seen[st.Key]; dup {
			cfg.Stats.RecordSpawnCollision()
			cfg.Logger.Warn("[run %s] %v", runID, (&SpawnCollisionError{Key: st.Key}).Error())
			return
		}
		if !rt.canAdmit(1) {
			cfg.Logger.Warn("[run %s] dropping spawn for %s: pending state limit reached", runID, st.Key)
			return
		}
		seen[st.Key] = struct{}{}
		rt.admit(1)
		cfg.Stats.RecordStateSpawned()
		b.Add(st)
	}

	dispatch := func() {
		for exec.InFlight() < cfg.MaxConcurrency && rt.canDispatch() {
			batch, ok := b.PopReady()
			if !ok {
				return
			}

			rt.startBatch()
			inFlightBatches++
			cfg.Stats.RecordBatchStart(len(batch.Members))

			members := batch.Members
			started := exec.TrySubmit(func(fctx context.Context) {
				start := time.Now()
				resp, err := cfg.FetchFn(fctx, params, members)
				ev := completionEvent{batch: batch, resp: resp, err: err, duration: time.Since(start)}
				select {
				case completions <- ev:
				case <-fctx.Done():
				}
			})

			if !started {
				// The coordinator is the sole submitter and only dispatches
				// while exec.InFlight() < cfg.MaxConcurrency, but InFlight
				// drops a moment before the executor frees the finished
				// task's slot, so a submit can still be refused here; treat
				// it as a transient failure rather than lose the batch's
				// states.
				rt.finishBatch()
				inFlightBatches--
				cfg.Logger.Error("[run %s] executor rejected batch %v unexpectedly; retrying next cycle", runID, batch.Key)
				for _, m := range members {
					b.Add(m)
				}
				return
			}
		}
	}

	handleCompletion := func(ev completionEvent) {
		defer func() {
			rt.finishBatch()
			inFlightBatches--
		}()
		cfg.Stats.RecordBatchComplete(len(ev.batch.Members), ev.duration)

		if ev.err != nil {
			cfg.Stats.RecordFetchError()
			for _, st := range ev.batch.Members {
				st.Err = &FetchError{Key: st.Key, Err: ev.err}
				emit(st)
			}
			return
		}

		result, perr := cfg.Parser.Parse(ev.resp, ev.batch.Members)
		if perr != nil {
			cfg.Stats.RecordParseError()
			for _, st := range ev.batch.Members {
				st.Err = &ParseError{Key: st.Key, Err: perr}
				emit(st)
			}
			return
		}

		for _, st := range ev.batch.Members {
			if items, ok := result.Items[st.Key]; ok {
				st.Items = append(st.Items, items...)
			}
			st.Pages++

			cursor, ok := result.Cursors[st.Key]
			if !ok {
				cursor = pagingstate.Done()
			}
			st.Cursor = cursor

			if st.Cursor.State == pagingstate.CursorDone {
				emit(st)
			} else {
				b.Add(st)
			}
		}

		for _, spawn := range result.Spawns {
			addSpawn(spawn)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case st, ok := <-input:
			if !ok {
				inputClosed = true
				input = nil // stop selecting a closed channel repeatedly
			} else {
				addSeed(st)
			}
			idle.Reset(cfg.IdleFlush)

		case ev := <-completions:
			handleCompletion(ev)
			idle.Reset(cfg.IdleFlush)

		case <-idle.C:
			if exec.InFlight() < cfg.MaxConcurrency && rt.canDispatch() {
				b.ForceFlush()
			}
			idle.Reset(cfg.IdleFlush)
		}

		dispatch()

		if inputClosed && b.Empty() && inFlightBatches == 0 {
			return
		}
	}
}
