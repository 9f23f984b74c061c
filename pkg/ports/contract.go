package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/snapshot"
	"github.com/aretw0/boardom/pkg/state"
)

func contractSnapshot(t *testing.T, id string) *snapshot.Snapshot {
	t.Helper()
	s, err := state.FromMap(map[string]any{
		"training": map[string]any{"epoch": 2, "global_step": 40},
		"name":     "contract",
	})
	require.NoError(t, err)
	return &snapshot.Snapshot{
		EngineID: id,
		Type:     "Trainer",
		SavedAt:  time.Now().UTC().Truncate(time.Second),
		State:    s,
	}
}

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot(t, id)
		require.NoError(t, store.Save(ctx, id, snap), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.EngineID, loaded.EngineID)
		assert.Equal(t, snap.Type, loaded.Type)
		assert.True(t, snap.SavedAt.Equal(loaded.SavedAt))
		assert.Equal(t, []string{"name", "training"}, loaded.State.Keys())
		assert.Equal(t, 40, loaded.State.GetOr("training.global_step", nil))
	})

	t.Run("Loaded snapshots are isolated", func(t *testing.T) {
		snap := contractSnapshot(t, id)
		require.NoError(t, store.Save(ctx, id, snap))
		require.NoError(t, snap.State.Set("name", "mutated"))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "contract", loaded.State.GetOr("name", nil))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, contractSnapshot(t, id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		require.NoError(t, store.Save(ctx, id1, contractSnapshot(t, id1)))
		require.NoError(t, store.Save(ctx, id2, contractSnapshot(t, id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
