package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"github.com/aretw0/boardom/internal/logging"
	"github.com/aretw0/boardom/pkg/adapters/redis"
	"github.com/aretw0/boardom/pkg/config"
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/observability"
	"github.com/aretw0/boardom/pkg/registry"
	"github.com/aretw0/boardom/pkg/runner"
	"github.com/aretw0/boardom/pkg/snapshot"
)

// RunSession loads the config, builds the engine, runs every phase and
// writes the final snapshot to opts.Out.
func RunSession(ctx context.Context, opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg, opts.LogLevel)
	if err != nil {
		return err
	}

	metrics := prometheus.NewRegistry()
	collector, err := observability.NewCollector("boardom", metrics)
	if err != nil {
		return err
	}

	e, err := createEngine(cfg, registry.Builtins(), logger, collector.Hooks())
	if err != nil {
		return err
	}
	phases, err := loadPhases(cfg)
	if err != nil {
		return err
	}

	if opts.Resume != "" && opts.Session != "" {
		return errors.New("resume and session cannot be combined")
	}

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if opts.Session != "" {
		runnerOpts = append(runnerOpts, runner.WithSession(opts.Session))
	}
	store, locker, err := setupPersistence(cfg, opts)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		runnerOpts = append(runnerOpts, runner.WithStore(store), runner.WithLocker(locker, 0))
	}
	r := runner.New(runnerOpts...)

	if opts.Resume != "" {
		if err := r.Resume(ctx, e, opts.Resume); err != nil {
			return err
		}
	}
	if opts.Session != "" {
		if _, err := r.ResumeOrSeed(ctx, e); err != nil {
			return err
		}
	}

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	logger.Info("run started", "engine", e.ID(), "phases", len(phases))
	snap, runErr := r.Run(signals.Context(), e, phases...)
	if snap != nil {
		if err := writeSnapshot(opts.Out, snap); err != nil {
			return err
		}
	}
	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, metrics); err != nil {
			logger.Warn("failed to write metrics", "path", opts.MetricsFile, "err", err)
		}
	}
	if runErr != nil && signals.Interrupted() {
		logger.Warn("run interrupted", "engine", e.ID())
	}
	return runErr
}

// ListEvents builds the engine described by the config and prints each
// event with the callables registered for it, in firing order.
func ListEvents(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	e, err := createEngine(cfg, registry.Builtins(), logging.NewNop(), engine.Hooks{})
	if err != nil {
		return err
	}
	for _, name := range e.Events() {
		fmt.Fprintln(opts.Out, name)
		for _, a := range e.Actions(name) {
			fmt.Fprintf(opts.Out, "  %s\n", a.Callable())
		}
	}
	return nil
}

func createLogger(cfg *config.Config, override string) (*slog.Logger, error) {
	name := override
	if name == "" {
		name = cast.ToString(cfg.GetOr(keyLogLevel, "info"))
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// setupPersistence returns the redis store and locker when an address is
// configured, or nils.
func setupPersistence(cfg *config.Config, opts RunOptions) (*redis.Store, *redis.Locker, error) {
	rc := RedisConfig{Prefix: redis.DefaultPrefix}
	if cfg.Has(keyRedis) {
		if err := cfg.Decode(keyRedis, &rc); err != nil {
			return nil, nil, fmt.Errorf("config %s: %w", keyRedis, err)
		}
	}
	if opts.RedisAddr != "" {
		rc.Address = opts.RedisAddr
	}
	if rc.Address == "" {
		if opts.Resume != "" || opts.Session != "" {
			return nil, nil, errors.New("resuming a snapshot needs a redis address")
		}
		return nil, nil, nil
	}

	store := redis.New(rc.Address, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
	return store, redis.NewLocker(store.Client(), rc.Prefix), nil
}

func writeSnapshot(w io.Writer, snap *snapshot.Snapshot) error {
	if w == nil {
		w = os.Stdout
	}
	data, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
