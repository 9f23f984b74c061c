package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/boardom/internal/logging"
	httpadapter "github.com/aretw0/boardom/pkg/adapters/http"
	"github.com/aretw0/boardom/pkg/adapters/redis"
	"github.com/aretw0/boardom/pkg/runner"
)

// ServeOptions holds the inputs of the serve command.
type ServeOptions struct {
	Addr      string
	RedisAddr string
	LogLevel  string
	// Gatherer backs /metrics. It defaults to prometheus.DefaultGatherer,
	// which holds process and Go runtime metrics only: dispatch metrics
	// belong to the run that produced them and are exported with
	// run --metrics-file.
	Gatherer prometheus.Gatherer
}

func (o ServeOptions) gatherer() prometheus.Gatherer {
	if o.Gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return o.Gatherer
}

func serveHandler(store *redis.Store, opts ServeOptions, logger *slog.Logger) http.Handler {
	return httpadapter.NewHandler(store, opts.gatherer(), logger)
}

// Serve runs the snapshot HTTP API until ctx is done or a signal arrives.
func Serve(ctx context.Context, opts ServeOptions) error {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	store := redis.New(opts.RedisAddr, "", 0)
	defer store.Close()
	if err := store.Client().Ping(ctx).Err(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           serveHandler(store, opts, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-signals.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
