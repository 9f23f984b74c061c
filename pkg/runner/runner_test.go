package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/adapters/memory"
	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/runner"
)

// recorder registers a callable on every given event that appends the event
// name to a log.
func recorder(t *testing.T, e *engine.Engine, events ...string) *[]string {
	t.Helper()
	var log []string
	for _, ev := range events {
		name := ev
		require.NoError(t, e.Register(name, engine.NewFunc("record_"+name, func(domain.Kwargs) (any, error) {
			log = append(log, name)
			return nil, nil
		})))
	}
	return &log
}

func TestRunner_EventOrder(t *testing.T) {
	e := engine.MustNew()
	log := recorder(t, e, "train_start", "train_epoch_start", "train_step", "train_epoch_end", "train_end")

	snap, err := runner.New().Run(t.Context(), e, runner.Phase{Name: "train", Epochs: 2, Steps: 2})
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, []string{
		"train_start",
		"train_epoch_start", "train_step", "train_step", "train_epoch_end",
		"train_epoch_start", "train_step", "train_step", "train_epoch_end",
		"train_end",
	}, *log)
	assert.Equal(t, e.ID(), snap.EngineID)
}

func TestRunner_CountersAndKwargs(t *testing.T) {
	e := engine.MustNew()
	type seen struct{ epoch, step, global any }
	var calls []seen
	e.MustRegister("training_step", engine.NewFunc("watch", func(kw domain.Kwargs) (any, error) {
		calls = append(calls, seen{kw["epoch"], kw["step"], e.GetOr("training.global_step", nil)})
		return nil, nil
	}, engine.Required("epoch"), engine.Required("step")))

	_, err := runner.New().Run(t.Context(), e, runner.Phase{Name: "training", Epochs: 2, Steps: 2})
	require.NoError(t, err)

	assert.Equal(t, []seen{{0, 0, 0}, {0, 1, 1}, {1, 0, 2}, {1, 1, 3}}, calls)
	assert.Equal(t, 1, e.GetOr("training.epoch", nil))
}

func TestRunner_CleanupPerStep(t *testing.T) {
	setTemp := func(kw domain.Kwargs) (any, error) {
		e := kw["engine"].(*engine.Engine)
		return nil, e.Set("training.loss", kw["step"])
	}

	e := engine.MustNew()
	e.MustRegister("training_step", engine.NewFunc("loss", setTemp, engine.Required("engine"), engine.Required("step")))
	_, err := runner.New().Run(t.Context(), e, runner.Phase{Name: "training", Steps: 3})
	require.NoError(t, err)
	assert.False(t, e.Contains("training.loss"))
	assert.True(t, e.Contains("training.global_step"), "counters survive the scope")

	kept := engine.MustNew()
	kept.MustRegister("training_step", engine.NewFunc("loss", setTemp, engine.Required("engine"), engine.Required("step")))
	_, err = runner.New(runner.WithCleanup(false)).Run(t.Context(), kept, runner.Phase{Name: "training", Steps: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, kept.GetOr("training.loss", nil))
}

func TestRunner_StopsOnActionError(t *testing.T) {
	boom := errors.New("boom")
	e := engine.MustNew()
	log := recorder(t, e, "train_end")
	e.MustRegister("train_step", engine.NewFunc("fail", func(domain.Kwargs) (any, error) {
		return nil, boom
	}))

	snap, err := runner.New().Run(t.Context(), e, runner.Phase{Name: "train", Steps: 5})
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, snap, "the state reached so far is still snapshotted")
	assert.Empty(t, *log)
}

func TestRunner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	e := engine.MustNew()
	steps := 0
	e.MustRegister("train_step", engine.NewFunc("count", func(domain.Kwargs) (any, error) {
		steps++
		if steps == 2 {
			cancel()
		}
		return nil, nil
	}))

	store := memory.NewStore()
	snap, err := runner.New(runner.WithStore(store)).Run(ctx, e, runner.Phase{Name: "train", Steps: 10})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, steps)
	require.NotNil(t, snap)

	saved, err := store.Load(t.Context(), e.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, saved.State.GetOr("train.global_step", nil))
}

func TestRunner_InvalidPhases(t *testing.T) {
	r := runner.New()
	tests := []struct {
		name  string
		phase runner.Phase
		want  error
	}{
		{"bad name", runner.Phase{Name: "no spaces"}, domain.ErrInvalidEventName},
		{"private name", runner.Phase{Name: "_hidden"}, domain.ErrInvalidEventName},
		{"reserved name", runner.Phase{Name: "keys"}, domain.ErrReservedName},
		{"negative steps", runner.Phase{Name: "train", Steps: -1}, domain.ErrUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(t.Context(), engine.MustNew(), tt.phase)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunner_PersistAndResume(t *testing.T) {
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store), runner.WithLocker(memory.NewLocker(), 0))

	e := engine.MustNew(engine.WithState(map[string]any{"best": 0.5}))
	_, err := r.Run(t.Context(), e, runner.Phase{Name: "training", Steps: 4})
	require.NoError(t, err)

	ids, err := store.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID()}, ids)

	fresh := engine.MustNew()
	require.NoError(t, r.Resume(t.Context(), fresh, e.ID()))
	assert.Equal(t, 0.5, fresh.GetOr("best", nil))
	assert.Equal(t, 3, fresh.GetOr("training.global_step", nil))

	err = r.Resume(t.Context(), fresh, "unknown")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	err = runner.New().Resume(t.Context(), fresh, e.ID())
	assert.ErrorIs(t, err, domain.ErrUsage)
}

func TestRunner_GlobalStepCarriesOverResume(t *testing.T) {
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store))

	first := engine.MustNew()
	_, err := r.Run(t.Context(), first, runner.Phase{Name: "training", Steps: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, first.GetOr("training.completed_steps", nil))

	resumed := engine.MustNew()
	require.NoError(t, r.Resume(t.Context(), resumed, first.ID()))
	var globals []any
	resumed.MustRegister("training_step", engine.NewFunc("watch", func(kw domain.Kwargs) (any, error) {
		globals = append(globals, kw["global_step"])
		return nil, nil
	}, engine.Required("global_step")))

	_, err = r.Run(t.Context(), resumed, runner.Phase{Name: "training", Steps: 2})
	require.NoError(t, err)
	assert.Equal(t, []any{3, 4}, globals)
	assert.Equal(t, 1, resumed.GetOr("training.step", nil))
	assert.Equal(t, 5, resumed.GetOr("training.completed_steps", nil))
}

func TestRunner_ResumeOrSeed(t *testing.T) {
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store), runner.WithLocker(memory.NewLocker(), 0), runner.WithSession("nightly"))

	seeded := engine.MustNew(engine.WithState(map[string]any{"best": 0.5}))
	restored, err := r.ResumeOrSeed(t.Context(), seeded)
	require.NoError(t, err)
	assert.False(t, restored)
	_, err = r.Run(t.Context(), seeded, runner.Phase{Name: "training", Steps: 2})
	require.NoError(t, err)

	ids, err := store.List(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"nightly"}, ids, "snapshots are saved under the session id")

	next := engine.MustNew()
	restored, err = r.ResumeOrSeed(t.Context(), next)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, 0.5, next.GetOr("best", nil))
	assert.Equal(t, 2, next.GetOr("training.completed_steps", nil))

	_, err = runner.New(runner.WithStore(store)).ResumeOrSeed(t.Context(), next)
	assert.ErrorIs(t, err, domain.ErrUsage)
	_, err = runner.New(runner.WithSession("nightly")).ResumeOrSeed(t.Context(), next)
	assert.ErrorIs(t, err, domain.ErrUsage)
}
