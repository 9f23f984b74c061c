package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/boardom/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SnapshotStore the final state is saved to.
func WithStore(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithLocker serializes snapshot writes for the same engine id across
// processes. A zero ttl uses session.DefaultLockTTL.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = locker
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithCleanup toggles the per-step cleanup scope. It is on by default.
func WithCleanup(enabled bool) Option {
	return func(r *Runner) {
		r.cleanup = enabled
	}
}

// WithSession saves the final snapshot under id instead of the engine id
// and names the snapshot ResumeOrSeed works with.
func WithSession(id string) Option {
	return func(r *Runner) {
		r.session = id
	}
}
