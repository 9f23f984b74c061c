package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/boardom/pkg/config"
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/registry"
	"github.com/aretw0/boardom/pkg/runner"
)

// Config keys read by the CLI.
const (
	keyComponents = "components"
	keyPhases     = "phases"
	keyState      = "state"
	keyLogLevel   = "log_level"
	keyRedis      = "redis"
)

// createEngine builds the trainer engine: the initial state from the "state"
// section, the config itself as settings, and every listed component.
func createEngine(cfg *config.Config, reg *registry.Registry, logger *slog.Logger, hooks engine.Hooks) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithSettings(cfg),
		engine.WithHooks(hooks),
	}
	if initial, ok := cfg.Get(keyState); ok && initial != nil {
		opts = append(opts, engine.WithState(initial))
	}

	e, err := engine.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	raw, _ := cfg.Get(keyComponents)
	specs, err := registry.Specs(raw)
	if err != nil {
		return nil, err
	}
	if err := reg.Install(e, specs...); err != nil {
		return nil, err
	}
	return e, nil
}

// loadPhases decodes the "phases" section. A config without phases runs
// nothing but still snapshots the initial state.
func loadPhases(cfg *config.Config) ([]runner.Phase, error) {
	var phases []runner.Phase
	if !cfg.Has(keyPhases) {
		return phases, nil
	}
	if err := cfg.Decode(keyPhases, &phases); err != nil {
		return nil, fmt.Errorf("config %s: %w", keyPhases, err)
	}
	return phases, nil
}
