package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/aretw0/boardom/pkg/config"
	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/state"
)

const stateName = "state"

var reservedNames = []string{
	"register", "event",
	"clear", "copy", "fromkeys", "get", "items", "keys",
	"pop", "popitem", "setdefault", "update", "values",
}

// IsReserved reports whether name belongs to the engine's own API and can
// neither be assigned nor declared as a member.
func IsReserved(name string) bool {
	return slices.Contains(reservedNames, name)
}

// ReservedNames returns the reserved names.
func ReservedNames() []string {
	return slices.Clone(reservedNames)
}

// Component is anything that contributes callables to an engine.
type Component interface {
	Callables() []*Callable
}

func isNilComponent(c Component) bool {
	switch v := c.(type) {
	case *Engine:
		return v == nil
	case *Type:
		return v == nil
	}
	return false
}

// Attacher is notified when it is registered on an engine.
type Attacher interface {
	Attach(target *Engine) error
}

type actionSet = orderedmap.OrderedMap[callableKey, *Action]

// Engine owns one State and a table of actions per event name.
//
// An Engine is meant for single-goroutine use: set it up, then drive it by
// firing events. Actions may fire further events re-entrantly.
type Engine struct {
	id       string
	typ      *Type
	state    *state.State
	actions  *orderedmap.OrderedMap[string, *actionSet]
	prior    map[string]struct{}
	logger   *slog.Logger
	settings Settings
	hooks    Hooks
}

// New creates an engine of the Base type.
func New(opts ...Option) (*Engine, error) {
	return Base.New(opts...)
}

// New creates an engine of type t.
//
// Value members are moved into the state, property members become computed
// state slots bound to the new engine, then the engine registers itself and
// every component given with WithComponents. Init hooks run last.
func (t *Type) New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		id:       uuid.NewString(),
		typ:      t,
		state:    state.New(),
		actions:  orderedmap.New[string, *actionSet](),
		prior:    make(map[string]struct{}),
		settings: o.settings,
		hooks:    o.hooks,
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger.With("engine", e.id)
	if e.settings == nil {
		e.settings = config.New()
	}

	for _, name := range t.order {
		if err := e.adopt(t.members[name]); err != nil {
			return nil, err
		}
	}
	if o.initial != nil {
		if err := e.state.Update(o.initial); err != nil {
			return nil, err
		}
	}

	if err := e.Register(e); err != nil {
		return nil, err
	}
	for _, item := range o.components {
		if err := e.Register(item); err != nil {
			return nil, err
		}
	}
	for _, init := range t.inits {
		if err := init(e); err != nil {
			return nil, fmt.Errorf("init %s: %w", t.name, err)
		}
	}
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// adopt moves a non-method member into the state.
func (e *Engine) adopt(m member) error {
	key := []string{m.name}
	switch m.kind {
	case valueMember:
		v := m.value
		if state.IsMapping(v) {
			sub := state.New()
			if err := sub.Update(v); err != nil {
				return err
			}
			v = sub
		}
		if err := e.state.SetPath(key, v); err != nil {
			return err
		}
	case propertyMember:
		slot := &state.Computed{}
		if m.get != nil {
			get := m.get
			slot.Get = func() (any, error) { return get(e) }
		}
		if m.set != nil {
			set := m.set
			slot.Set = func(v any) error { return set(e, v) }
		}
		if err := e.state.DefinePath(key, slot); err != nil {
			return err
		}
	default:
		return nil
	}
	e.prior[m.name] = struct{}{}
	return nil
}

// Register adds callables to the event table.
//
// It accepts a single *Callable, registered for the events it is marked
// with; event names followed by a *Callable, registered for those names and
// its marks; or a single Component, whose callables are each registered for
// their marks. A component that is also an Attacher is then attached.
func (e *Engine) Register(items ...any) error {
	if len(items) == 0 {
		return domain.ErrNoComponents
	}
	last := items[len(items)-1]

	names := make([]string, 0, len(items)-1)
	for _, item := range items[:len(items)-1] {
		name, ok := item.(string)
		if !ok {
			return fmt.Errorf("%w: event name must be a string, got %T", domain.ErrInvalidEventName, item)
		}
		if err := domain.ValidateEventName(name); err != nil {
			return err
		}
		names = append(names, name)
	}

	switch v := last.(type) {
	case *Callable:
		if v == nil {
			return fmt.Errorf("%w: nil callable", domain.ErrNotCallable)
		}
		return e.registerCallable(dedupe(names, eventsOf(v)), v)
	case Component:
		if isNilComponent(v) {
			return fmt.Errorf("%w: nil %T", domain.ErrNotCallable, last)
		}
		if len(names) > 0 {
			return fmt.Errorf("%w: %T is a component, event names apply to callables only", domain.ErrNotCallable, last)
		}
		for _, c := range v.Callables() {
			if err := e.registerCallable(eventsOf(c), c); err != nil {
				return err
			}
		}
		if a, ok := last.(Attacher); ok {
			if err := a.Attach(e); err != nil {
				return fmt.Errorf("attach %T: %w", last, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot register %T", domain.ErrNotCallable, last)
	}
}

// MustRegister is like Register but panics on error.
func (e *Engine) MustRegister(items ...any) *Engine {
	if err := e.Register(items...); err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) registerCallable(names []string, c *Callable) error {
	for _, name := range names {
		a, err := NewAction(name, c)
		if err != nil {
			return err
		}
		set, ok := e.actions.Get(name)
		if !ok {
			set = orderedmap.New[callableKey, *Action]()
			e.actions.Set(name, set)
		}
		if _, exists := set.Get(c.key()); exists {
			e.logger.Warn("callable already registered for event", "event", name, "callable", c.String())
		}
		set.Set(c.key(), a)
	}
	return nil
}

// Callables returns the type's methods bound to e.
func (e *Engine) Callables() []*Callable {
	var out []*Callable
	for _, name := range e.typ.order {
		if c, ok := e.Method(name); ok {
			out = append(out, c)
		}
	}
	return out
}

// Attach runs the type's attach hook with target.
func (e *Engine) Attach(target *Engine) error {
	if e.typ.attach == nil {
		return nil
	}
	return e.typ.attach(e, target)
}

// Event fires name with positional arguments.
func (e *Engine) Event(name string, args ...any) (domain.Results, error) {
	return e.EventKw(name, nil, args...)
}

// EventKw fires name with keyword and positional arguments and returns every
// action's result in registration order. It returns nil when no action is
// registered for name. The first failing action stops the dispatch.
func (e *Engine) EventKw(name string, kw domain.Kwargs, args ...any) (domain.Results, error) {
	ev, err := domain.NewEvent(name, args, kw)
	if err != nil {
		return nil, err
	}
	actions := e.Actions(name)
	if len(actions) == 0 {
		return nil, nil
	}
	return e.dispatch(ev, actions)
}

func (e *Engine) dispatch(ev domain.Event, actions []*Action) (domain.Results, error) {
	e.hooks.event(ev, len(actions))
	results := make(domain.Results, 0, len(actions))
	for _, a := range actions {
		start := time.Now()
		out, err := a.Invoke(e, ev)
		e.hooks.action(ev, a, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("event %q: %s: %w", ev.Name(), a.target, err)
		}
		results = append(results, out)
	}
	return results, nil
}

// HasEvent reports whether any action is registered for name.
func (e *Engine) HasEvent(name string) bool {
	set, ok := e.actions.Get(name)
	return ok && set.Len() > 0
}

// Events returns the event names in the order they were first registered.
func (e *Engine) Events() []string {
	names := make([]string, 0, e.actions.Len())
	for pair := e.actions.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Actions returns the actions registered for name, in registration order.
func (e *Engine) Actions(name string) []*Action {
	set, ok := e.actions.Get(name)
	if !ok {
		return nil
	}
	out := make([]*Action, 0, set.Len())
	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Set writes value at path in the state. Assigning "state" replaces the
// whole state. Reserved names and names that are already events cannot be
// assigned.
func (e *Engine) Set(path string, value any) error {
	keys := state.Split(path)
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty path", domain.ErrInvalidKey)
	}
	head := keys[0]
	switch {
	case len(keys) == 1 && head == stateName:
		return e.ReplaceState(value)
	case IsReserved(head):
		return fmt.Errorf("%w: %q", domain.ErrReservedName, head)
	case len(keys) == 1 && e.HasEvent(head):
		return fmt.Errorf("%w: %q", domain.ErrEventExists, head)
	}
	return e.state.SetPath(keys, value)
}

// ReplaceState swaps the state for a fresh one filled from src, which must be
// a mapping or another engine.
func (e *Engine) ReplaceState(src any) error {
	if other, ok := src.(*Engine); ok {
		src = other.state
	}
	if !state.IsMapping(src) {
		return fmt.Errorf("%w: cannot assign %T to %s", domain.ErrNotMapping, src, stateName)
	}
	fresh := state.New()
	if err := fresh.Update(src); err != nil {
		return err
	}
	e.state = fresh
	return nil
}

// Delete removes path from the state.
func (e *Engine) Delete(path string) error {
	return e.state.Delete(path)
}

// Contains reports whether path can be read from the state.
func (e *Engine) Contains(path string) bool {
	return e.state.Contains(path)
}

// GetOr reads path from the state, returning def when it cannot be read.
func (e *Engine) GetOr(path string, def any) any {
	return e.state.GetOr(path, def)
}

// Pop reads path from the state and removes it.
func (e *Engine) Pop(path string) (any, error) {
	v, err := e.state.Get(path)
	if err != nil {
		return nil, err
	}
	if err := e.state.Delete(path); err != nil {
		return nil, err
	}
	return v, nil
}

// Update merges a mapping, or another engine's state, into the state.
func (e *Engine) Update(other any) error {
	if o, ok := other.(*Engine); ok {
		other = o.state
	}
	return e.state.Update(other)
}

// Keys returns the top-level state keys.
func (e *Engine) Keys() []string { return e.state.Keys() }

// Len returns the number of top-level state entries.
func (e *Engine) Len() int { return e.state.Len() }

// State returns the engine's state.
func (e *Engine) State() *state.State { return e.state }

// ID returns the engine's unique id.
func (e *Engine) ID() string { return e.id }

// Type returns the engine's type.
func (e *Engine) Type() *Type { return e.typ }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Settings returns the engine's configuration store.
func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) String() string {
	return fmt.Sprintf("%s(id=%s, events=[%s])", e.typ.name, e.id, strings.Join(e.Events(), ", "))
}
