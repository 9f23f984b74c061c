package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/boardom/pkg/domain"
)

type memberKind int

const (
	methodMember memberKind = iota
	valueMember
	propertyMember
)

type member struct {
	name   string
	kind   memberKind
	method *Callable
	value  any
	get    func(self *Engine) (any, error)
	set    func(self *Engine, value any) error
}

// Type describes a kind of engine: its methods, value members and computed
// properties, and the event bindings of each method. Types are immutable once
// built; inheritance is resolved by Build.
type Type struct {
	name    string
	base    *Type
	order   []string
	members map[string]member
	events  map[string][]string
	inits   []func(self *Engine) error
	attach  func(self, target *Engine) error
}

// Base is the root type. Engines created with New are of this type.
var Base = &Type{
	name:    "Engine",
	members: map[string]member{},
	events:  map[string][]string{},
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Base returns the type t was derived from, or nil for the root type.
func (t *Type) Base() *Type { return t.base }

// Members returns member names in declaration order, inherited ones first.
func (t *Type) Members() []string { return slices.Clone(t.order) }

// Bindings returns the events the named method member is bound to.
func (t *Type) Bindings(name string) []string { return slices.Clone(t.events[name]) }

// Callables returns the unbound method members with their baked bindings,
// which makes a Type registrable as a component.
func (t *Type) Callables() []*Callable {
	var out []*Callable
	for _, name := range t.order {
		m := t.members[name]
		if m.kind != methodMember {
			continue
		}
		out = append(out, m.method.withInherited(t.events[name]))
	}
	return out
}

// TypeBuilder accumulates the members of a Type. Declaration errors are
// collected and reported by Build.
type TypeBuilder struct {
	name   string
	base   *Type
	own    []member
	init   func(self *Engine) error
	attach func(self, target *Engine) error
	err    error
}

// NewType starts a type deriving from base. A nil base means Base.
func NewType(name string, base *Type) *TypeBuilder {
	if base == nil {
		base = Base
	}
	return &TypeBuilder{name: name, base: base}
}

// Method declares a method member named after c. A plain function declares a
// static member, which is never bound.
func (b *TypeBuilder) Method(c *Callable) *TypeBuilder {
	if c == nil {
		b.fail(fmt.Errorf("%w: nil method on type %s", domain.ErrNotCallable, b.name))
		return b
	}
	return b.add(member{name: c.name, kind: methodMember, method: c})
}

// Value declares a plain member. Each engine receives it as a state entry.
func (b *TypeBuilder) Value(name string, v any) *TypeBuilder {
	if _, ok := v.(*Callable); ok {
		b.fail(fmt.Errorf("%w: value member %q holds a callable, declare it with Method", domain.ErrUsage, name))
		return b
	}
	return b.add(member{name: name, kind: valueMember, value: v})
}

// Property declares a computed member. Each engine receives it as a computed
// state slot bound to that engine. set may be nil.
func (b *TypeBuilder) Property(name string, get func(self *Engine) (any, error), set func(self *Engine, value any) error) *TypeBuilder {
	return b.add(member{name: name, kind: propertyMember, get: get, set: set})
}

// Init sets a hook run once each engine of the type is constructed and
// registered. Base type hooks run first.
func (b *TypeBuilder) Init(fn func(self *Engine) error) *TypeBuilder {
	b.init = fn
	return b
}

// Attach sets the hook run whenever an engine of the type is registered as a
// component, including on itself at construction. It overrides the base hook.
func (b *TypeBuilder) Attach(fn func(self, target *Engine) error) *TypeBuilder {
	b.attach = fn
	return b
}

// Build resolves inheritance and returns the type.
//
// A member overriding a base method keeps the base method's bindings: if the
// override declares no events of its own it inherits them unchanged, otherwise
// the base bindings are appended after its own.
func (b *TypeBuilder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !domain.IsIdentifier(b.name) {
		return nil, fmt.Errorf("%w: type name %q", domain.ErrUsage, b.name)
	}

	base := b.base
	t := &Type{
		name:    b.name,
		base:    base,
		order:   slices.Clone(base.order),
		members: maps.Clone(base.members),
		events:  make(map[string][]string, len(base.events)),
		inits:   slices.Clone(base.inits),
		attach:  base.attach,
	}
	for name, events := range base.events {
		t.events[name] = slices.Clone(events)
	}
	if b.init != nil {
		t.inits = append(t.inits, b.init)
	}
	if b.attach != nil {
		t.attach = b.attach
	}

	for _, m := range b.own {
		if _, exists := t.members[m.name]; !exists {
			t.order = append(t.order, m.name)
		}
		t.members[m.name] = m
		delete(t.events, m.name)
		if m.kind != methodMember {
			continue
		}
		if merged := dedupe(marks.eventsOf(m.method.origin), base.events[m.name]); len(merged) > 0 {
			t.events[m.name] = merged
		}
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *TypeBuilder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *TypeBuilder) add(m member) *TypeBuilder {
	switch {
	case !domain.IsIdentifier(m.name):
		b.fail(fmt.Errorf("%w: member %q of type %s", domain.ErrInvalidKey, m.name, b.name))
	case m.name == stateName || IsReserved(m.name):
		b.fail(fmt.Errorf("%w: member %q of type %s", domain.ErrReservedName, m.name, b.name))
	case slices.ContainsFunc(b.own, func(o member) bool { return o.name == m.name }):
		b.fail(fmt.Errorf("%w: member %q declared twice on type %s", domain.ErrUsage, m.name, b.name))
	default:
		b.own = append(b.own, m)
	}
	return b
}

func (b *TypeBuilder) fail(err error) {
	b.err = errors.Join(b.err, err)
}
