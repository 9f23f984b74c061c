package engine

import "log/slog"

type options struct {
	logger     *slog.Logger
	components []any
	initial    any
	settings   Settings
	hooks      Hooks
}

// Option configures an Engine at construction.
type Option func(*options)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithComponents registers each item once the engine is built, in order.
// Items are anything Register accepts as a single argument.
func WithComponents(items ...any) Option {
	return func(o *options) {
		o.components = append(o.components, items...)
	}
}

// WithState merges a mapping into the state after type members are moved in.
func WithState(initial any) Option {
	return func(o *options) {
		o.initial = initial
	}
}

// WithSettings sets the configuration store exposed by Engine.Settings.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithHooks installs dispatch hooks.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}
