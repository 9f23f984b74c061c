package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/adapters/memory"
	"github.com/aretw0/boardom/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryLocker(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "k", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locker.Lock(ctx, "other", time.Second)
	require.NoError(t, err, "distinct keys do not contend")
	require.NoError(t, other(ctx))

	acquired := make(chan struct{})
	go func() {
		u, err := locker.Lock(ctx, "k", time.Second)
		if err == nil {
			_ = u(ctx)
		}
		close(acquired)
	}()

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "unlocking twice is harmless")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}
