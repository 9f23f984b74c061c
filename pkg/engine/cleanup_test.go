package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/engine"
)

func cleanupFixture(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.MustNew()
	require.NoError(t, e.Set("state", map[string]any{
		"a": 3,
		"b": map[string]any{"c": map[string]any{"d": 15}, "e": 1},
		"f": 3,
	}))
	return e
}

func populate(t *testing.T, e *engine.Engine) {
	t.Helper()
	require.NoError(t, e.Set("d", 10))
	require.NoError(t, e.Set("g", map[string]any{"h": map[string]any{"j": 13}}))
	require.NoError(t, e.Set("b.c.w", map[string]any{"z": 2}))
	require.True(t, e.Contains("b.c.w.z"))
}

func assertCleaned(t *testing.T, e *engine.Engine) {
	t.Helper()
	assert.Equal(t, 3, e.GetOr("a", nil))
	assert.Equal(t, 15, e.GetOr("b.c.d", nil))
	assert.Equal(t, 1, e.GetOr("b.e", nil))
	assert.Equal(t, 3, e.GetOr("f", nil))
	for _, p := range []string{"d", "g.h.j", "g.h", "g", "b.c.w"} {
		assert.False(t, e.Contains(p), p)
	}
}

func TestCleanupState_NormalExit(t *testing.T) {
	e := cleanupFixture(t)
	err := engine.WithCleanup(e, func() error {
		populate(t, e)
		return nil
	})
	require.NoError(t, err)
	assertCleaned(t, e)
}

func TestCleanupState_ErrorExit(t *testing.T) {
	e := cleanupFixture(t)
	boom := errors.New("boom")
	err := engine.WithCleanup(e, func() error {
		populate(t, e)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assertCleaned(t, e)
}

func TestCleanupState_Panic(t *testing.T) {
	e := cleanupFixture(t)
	assert.PanicsWithValue(t, "boom", func() {
		_ = engine.WithCleanup(e, func() error {
			populate(t, e)
			panic("boom")
		})
	})
	assertCleaned(t, e)
}

func TestCleanupState_ExplicitClose(t *testing.T) {
	e := cleanupFixture(t)
	scope := engine.CleanupState(e)
	populate(t, e)
	require.NoError(t, scope.Close())
	assertCleaned(t, e)

	require.NoError(t, e.Set("d", 1))
	require.NoError(t, scope.Close(), "second close is a no-op")
	assert.True(t, e.Contains("d"))
}
