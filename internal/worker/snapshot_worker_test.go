package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eatprep/cbt-player/internal/model"
	"github.com/eatprep/cbt-player/internal/snapshot"
)

func TestSnapshotWorkerPersistsAndDrains(t *testing.T) {
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	w := NewSnapshotWorker(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	w.Enqueue(Job{Snap: &model.Snapshot{CurrentIndex: 1, QuestionSetID: "a"}})
	w.Enqueue(Job{Snap: &model.Snapshot{CurrentIndex: 4, QuestionSetID: "a"}})

	cancel()
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain in time")
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentIndex != 4 {
		t.Fatalf("latest snapshot not persisted: %+v", got)
	}
}

func TestSnapshotWorkerClearJob(t *testing.T) {
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	w := NewSnapshotWorker(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	w.Enqueue(Job{Snap: &model.Snapshot{CurrentIndex: 1, QuestionSetID: "a"}})
	w.Enqueue(Job{}) // submit clears the snapshot

	cancel()
	<-w.Done()

	if _, err := store.Load(context.Background()); !errors.Is(err, snapshot.ErrNoSnapshot) {
		t.Fatalf("snapshot not cleared: %v", err)
	}
}

func TestSnapshotWorkerEnqueueNeverBlocks(t *testing.T) {
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	w := NewSnapshotWorker(store, zerolog.Nop())

	// Worker not started: the queue fills and old jobs get dropped.
	doneCh := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*3; i++ {
			w.Enqueue(Job{Snap: &model.Snapshot{CurrentIndex: i, QuestionSetID: "a"}})
		}
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
