package cli

import (
	"io"
	"time"
)

// RunOptions holds the inputs of a CLI run.
type RunOptions struct {
	// ConfigPath is the YAML file describing components, phases and initial state.
	ConfigPath string
	// RedisAddr enables the redis snapshot store when set. It overrides redis.address.
	RedisAddr string
	// Resume restores the snapshot stored under this id before running.
	Resume string
	// Session names a snapshot that is restored when present, seeded when
	// not, and overwritten with the final state.
	Session string
	// MetricsFile receives the Prometheus metrics in text format after the run.
	MetricsFile string
	// LogLevel overrides log_level from the config file.
	LogLevel string
	// Out receives the YAML snapshot. Logs always go to Stderr.
	Out io.Writer
}

// RedisConfig is the redis section of the config file.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}
