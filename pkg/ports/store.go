package ports

import (
	"context"

	"github.com/aretw0/boardom/pkg/snapshot"
)

// SnapshotStore persists engine snapshots.
type SnapshotStore interface {
	// Save stores snap under id, replacing any previous snapshot.
	Save(ctx context.Context, id string, snap *snapshot.Snapshot) error

	// Load retrieves the snapshot stored under id.
	// Returns domain.ErrSnapshotNotFound if there is none.
	Load(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// Delete removes the snapshot stored under id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of stored snapshots.
	List(ctx context.Context) ([]string, error)
}
