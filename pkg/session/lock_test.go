package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/boardom/pkg/adapters/memory"
	"github.com/aretw0/boardom/pkg/snapshot"
	"github.com/aretw0/boardom/pkg/state"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := range count {
		id := fmt.Sprintf("engine-%d", i)
		_ = mgr.Save(ctx, id, &snapshot.Snapshot{EngineID: id, State: state.New()})
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be dropped once released")
}
