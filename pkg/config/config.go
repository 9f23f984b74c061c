// Package config is the key/value store engines read their settings from.
//
// Keys are dotted paths into nested mappings:
//
//	cfg, _ := config.Parse([]byte("training:\n  epochs: 3\n"))
//	epochs, _ := cfg.Int("training.epochs")
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrKeyNotFound is returned by the typed getters for absent keys.
var ErrKeyNotFound = errors.New("config key not found")

// Config is a hierarchical key/value store safe for concurrent use.
type Config struct {
	mu     sync.RWMutex
	values map[string]any
}

// New returns an empty Config.
func New() *Config {
	return &Config{values: map[string]any{}}
}

// FromMap builds a Config from a nested mapping, which it copies.
func FromMap(m map[string]any) *Config {
	return &Config{values: deepCopy(m)}
}

// Load reads a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document whose top level is a mapping.
func Parse(data []byte) (*Config, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]any{}
	}
	return &Config{values: values}, nil
}

// Get returns the value at a dotted key.
func (c *Config) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lookup(c.values, split(key))
}

// GetOr returns the value at key, or def when it is absent.
func (c *Config) GetOr(key string, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set writes value at a dotted key, creating intermediate mappings.
// It fails if an intermediate segment holds something other than a mapping.
func (c *Config) Set(key string, value any) error {
	keys := split(key)
	if len(keys) == 0 {
		return fmt.Errorf("config: empty key")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.values
	for i, k := range keys[:len(keys)-1] {
		next, ok := cur[k]
		if !ok {
			m := map[string]any{}
			cur[k] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("config: %q holds %T, not a mapping", strings.Join(keys[:i+1], "."), next)
		}
		cur = m
	}
	cur[keys[len(keys)-1]] = value
	return nil
}

// Keys returns the top-level keys, sorted.
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.values))
}

// Map returns a deep copy of the stored values.
func (c *Config) Map() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepCopy(c.values)
}

// Sub returns a copy of the mapping at key as its own Config.
func (c *Config) Sub(key string) (*Config, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", key, err)
	}
	return FromMap(m), nil
}

// Decode decodes the value at key into out, which must be a pointer. Fields
// are matched by their mapstructure tags and scalars are converted loosely,
// so "3" decodes into an int field.
func (c *Config) Decode(key string, out any) error {
	var src any = c.Map()
	if key != "" {
		v, ok := c.Get(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		src = v
	}
	return DecodeValue(src, out)
}

// DecodeValue decodes an arbitrary value into out the way Decode does.
func DecodeValue(src, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// Int reads key as an int.
func (c *Config) Int(key string) (int, error) {
	v, err := c.must(key)
	if err != nil {
		return 0, err
	}
	return cast.ToIntE(v)
}

// Float reads key as a float64.
func (c *Config) Float(key string) (float64, error) {
	v, err := c.must(key)
	if err != nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// String reads key as a string.
func (c *Config) String(key string) (string, error) {
	v, err := c.must(key)
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

// Bool reads key as a bool.
func (c *Config) Bool(key string) (bool, error) {
	v, err := c.must(key)
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(v)
}

// Duration reads key as a duration. Strings use time.ParseDuration syntax;
// bare numbers are nanoseconds.
func (c *Config) Duration(key string) (time.Duration, error) {
	v, err := c.must(key)
	if err != nil {
		return 0, err
	}
	return cast.ToDurationE(v)
}

func (c *Config) must(key string) (any, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}

func split(key string) []string {
	key = strings.Trim(key, ". ")
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

func lookup(values map[string]any, keys []string) (any, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	var cur any = values
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = deepCopy(sub)
		}
		out[k] = v
	}
	return out
}
