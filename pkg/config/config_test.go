package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/config"
)

const sample = `
training:
  epochs: 3
  steps: "4"
  lr: 0.1
  verbose: true
  log_every: 2s
name: demo
`

func TestParse_TypedGetters(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	epochs, err := cfg.Int("training.epochs")
	require.NoError(t, err)
	assert.Equal(t, 3, epochs)

	steps, err := cfg.Int("training.steps")
	require.NoError(t, err)
	assert.Equal(t, 4, steps)

	lr, err := cfg.Float("training.lr")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, lr, 1e-9)

	verbose, err := cfg.Bool("training.verbose")
	require.NoError(t, err)
	assert.True(t, verbose)

	every, err := cfg.Duration("training.log_every")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, every)

	name, err := cfg.String("name")
	require.NoError(t, err)
	assert.Equal(t, "demo", name)

	_, err = cfg.Int("training.missing")
	assert.ErrorIs(t, err, config.ErrKeyNotFound)
}

func TestConfig_GetSetHas(t *testing.T) {
	cfg := config.New()
	assert.False(t, cfg.Has("a.b"))
	assert.Equal(t, 7, cfg.GetOr("a.b", 7))

	require.NoError(t, cfg.Set("a.b", 5))
	v, ok := cfg.Get("a.b")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.True(t, cfg.Has("a"))
	assert.Equal(t, []string{"a"}, cfg.Keys())

	err := cfg.Set("a.b.c", 1)
	assert.Error(t, err, "a.b holds an int")
}

func TestConfig_Decode(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	var training struct {
		Epochs   int           `mapstructure:"epochs"`
		Steps    int           `mapstructure:"steps"`
		LR       float64       `mapstructure:"lr"`
		LogEvery time.Duration `mapstructure:"log_every"`
	}
	require.NoError(t, cfg.Decode("training", &training))
	assert.Equal(t, 3, training.Epochs)
	assert.Equal(t, 4, training.Steps)
	assert.Equal(t, 2*time.Second, training.LogEvery)

	assert.ErrorIs(t, cfg.Decode("nope", &training), config.ErrKeyNotFound)
}

func TestConfig_SubAndMapAreCopies(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	sub, err := cfg.Sub("training")
	require.NoError(t, err)
	require.NoError(t, sub.Set("epochs", 10))

	epochs, err := cfg.Int("training.epochs")
	require.NoError(t, err)
	assert.Equal(t, 3, epochs)

	m := cfg.Map()
	m["name"] = "changed"
	assert.Equal(t, "demo", cfg.GetOr("name", nil))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Has("training.lr"))

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
