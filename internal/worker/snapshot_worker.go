package worker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eatprep/cbt-player/internal/model"
	"github.com/eatprep/cbt-player/internal/snapshot"
)

// queueSize bounds the persist queue. The session produces one job per
// user action, so the queue only fills if the store is badly stalled.
const queueSize = 64

// Job is one persistence request. A nil Snap clears the stored
// snapshot (the session was submitted or discarded).
type Job struct {
	Snap *model.Snapshot
}

// SnapshotWorker writes session snapshots off the request path. The
// service enqueues fire-and-forget; a failed write is logged and the
// in-memory session continues unaffected, because the next mutation
// enqueues a fresh snapshot anyway.
type SnapshotWorker struct {
	store snapshot.Store
	log   zerolog.Logger
	jobs  chan Job
	done  chan struct{}
}

// NewSnapshotWorker creates a worker over a snapshot store.
func NewSnapshotWorker(store snapshot.Store, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		store: store,
		log:   log.With().Str("component", "snapshot_worker").Logger(),
		jobs:  make(chan Job, queueSize),
		done:  make(chan struct{}),
	}
}

// Enqueue submits a job without blocking. When the queue is full the
// oldest job is dropped: only the newest snapshot matters.
func (w *SnapshotWorker) Enqueue(job Job) {
	for {
		select {
		case w.jobs <- job:
			return
		default:
		}
		select {
		case <-w.jobs:
			w.log.Debug().Msg("Persist queue full, dropped oldest snapshot")
		default:
		}
	}
}

// Start begins the worker loop. Call in a goroutine; it returns after
// ctx is cancelled and the remaining queue has been drained.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.drain()
			w.log.Info().Msg("Worker stopped")
			return
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

// Done is closed once Start has drained and returned.
func (w *SnapshotWorker) Done() <-chan struct{} {
	return w.done
}

func (w *SnapshotWorker) process(ctx context.Context, job Job) {
	var err error
	if job.Snap == nil {
		err = w.store.Clear(ctx)
	} else {
		err = w.store.Save(ctx, *job.Snap)
	}
	if err != nil {
		// Non-fatal: the next mutation persists a fresh snapshot.
		w.log.Warn().Err(err).Msg("Snapshot persist failed")
	}
}

// drain flushes whatever is still queued before shutdown, with a
// background context so an already-cancelled ctx does not abort the
// final write.
func (w *SnapshotWorker) drain() {
	drained := 0
	for {
		select {
		case job := <-w.jobs:
			w.process(context.Background(), job)
			drained++
		default:
			if drained > 0 {
				w.log.Info().Int("count", drained).Msg("Drained remaining snapshots")
			}
			return
		}
	}
}
