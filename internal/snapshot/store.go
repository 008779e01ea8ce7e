// Package snapshot persists the in-progress session projection so a
// session can resume after an interruption. Persistence is best-effort:
// a failed write is logged by the caller and the in-memory state stays
// authoritative.
package snapshot

import (
	"context"
	"errors"

	"github.com/eatprep/cbt-player/internal/model"
)

// ErrNoSnapshot means no snapshot is stored; the caller starts fresh.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store holds at most one snapshot: the single active session's.
type Store interface {
	Save(ctx context.Context, snap model.Snapshot) error
	// Load returns ErrNoSnapshot when nothing is stored.
	Load(ctx context.Context) (model.Snapshot, error)
	// Clear removes the stored snapshot. Clearing an empty store is
	// not an error.
	Clear(ctx context.Context) error
}
