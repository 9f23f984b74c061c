package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/boardom/pkg/config"
	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
)

// ErrFactoryNotFound is returned when no factory is registered under a name.
var ErrFactoryNotFound = fmt.Errorf("%w: component factory", domain.ErrNotFound)

// Factory builds a component from its configuration options.
// The result must be something Engine.Register accepts: a *engine.Callable,
// a *engine.Type or an *engine.Engine.
type Factory func(opts map[string]any) (any, error)

// Spec names a factory and the options it is built with. It is the shape of
// one entry of the "components" list in configuration files.
type Spec struct {
	Name    string         `mapstructure:"name"`
	Options map[string]any `mapstructure:"options"`
}

// Registry manages the available component factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Names returns the registered factory names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build looks up a factory by name and runs it with opts.
func (r *Registry) Build(name string, opts map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFactoryNotFound, name)
	}
	if opts == nil {
		opts = map[string]any{}
	}

	c, err := fn(opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return c, nil
}

// Install builds every spec in order and registers the results on e.
func (r *Registry) Install(e *engine.Engine, specs ...Spec) error {
	for _, spec := range specs {
		c, err := r.Build(spec.Name, spec.Options)
		if err != nil {
			return err
		}
		if err := e.Register(c); err != nil {
			return fmt.Errorf("install %s: %w", spec.Name, err)
		}
	}
	return nil
}

// Specs decodes a list of component specs from a configuration value, such
// as the result of config.Get("components").
func Specs(src any) ([]Spec, error) {
	var specs []Spec
	if src == nil {
		return specs, nil
	}
	if err := config.DecodeValue(src, &specs); err != nil {
		return nil, fmt.Errorf("decode component specs: %w", err)
	}
	return specs, nil
}

// Options decodes factory options into out, a pointer to a struct with
// mapstructure tags. Fields missing from opts keep the values out already has.
func Options(opts map[string]any, out any) error {
	if err := config.DecodeValue(opts, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUsage, err)
	}
	return nil
}
