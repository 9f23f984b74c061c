package engine

import (
	"fmt"

	"github.com/aretw0/boardom/pkg/domain"
)

// ReceiverParam is the parameter name that always binds to the resolved receiver engine.
const ReceiverParam = "engine"

// SelfParam is the leading parameter an unbound method declares for its receiver.
const SelfParam = "self"

// Func is the body of a plain function. kw holds the bound value of every declared parameter.
type Func func(kw domain.Kwargs) (any, error)

// MethodFunc is the receiver-agnostic body of a method.
type MethodFunc func(self *Engine, kw domain.Kwargs) (any, error)

// Param declares one parameter of a callable.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// Required declares a parameter without a default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Callable is a named function with declared parameters.
//
// It is one of: a plain function (NewFunc), an unbound method (NewMethod) or a
// method bound to a receiver engine (Bind). Identity is the pair of the
// originally constructed callable and the bound receiver, so binding the same
// method to the same engine twice yields equal callables.
type Callable struct {
	name   string
	params []Param
	fn     Func
	method MethodFunc
	self   *Engine
	origin *Callable

	// inherited holds bindings baked by an engine type for this member.
	inherited []string
}

type callableKey struct {
	origin *Callable
	self   *Engine
}

// NewFunc creates a plain function callable.
func NewFunc(name string, fn Func, params ...Param) *Callable {
	if fn == nil {
		panic("engine: NewFunc with nil function")
	}
	c := &Callable{name: name, params: params, fn: fn}
	c.origin = c
	return c
}

// NewMethod creates an unbound method. Bind it to an engine, or declare it on a
// Type, to give it an implicit receiver.
func NewMethod(name string, fn MethodFunc, params ...Param) *Callable {
	if fn == nil {
		panic("engine: NewMethod with nil function")
	}
	c := &Callable{name: name, params: params, method: fn}
	c.origin = c
	return c
}

// Bind returns the method bound to e. Binding a plain function returns it unchanged.
func (c *Callable) Bind(e *Engine) *Callable {
	if c.method == nil {
		return c
	}
	bound := *c
	bound.self = e
	return &bound
}

// Name returns the callable's name.
func (c *Callable) Name() string { return c.name }

// IsMethod reports whether c has a receiver, bound or not.
func (c *Callable) IsMethod() bool { return c.method != nil }

// Receiver returns the engine c is bound to, or nil.
func (c *Callable) Receiver() *Engine { return c.self }

// Params returns the parameters filled at call time.
// An unbound method lists SelfParam first.
func (c *Callable) Params() []Param {
	if c.method != nil && c.self == nil {
		return append([]Param{{Name: SelfParam}}, c.params...)
	}
	return append([]Param(nil), c.params...)
}

// Same reports whether c and other are the same callable.
func (c *Callable) Same(other *Callable) bool {
	return other != nil && c.key() == other.key()
}

func (c *Callable) String() string {
	if c.self != nil {
		return fmt.Sprintf("%s(bound to %s)", c.name, c.self.id)
	}
	return c.name
}

func (c *Callable) key() callableKey {
	return callableKey{origin: c.origin, self: c.self}
}

func (c *Callable) withInherited(events []string) *Callable {
	if len(events) == 0 {
		return c
	}
	cp := *c
	cp.inherited = append([]string(nil), events...)
	return &cp
}

// invoke runs the body with fully bound keyword arguments.
func (c *Callable) invoke(recv *Engine, kw domain.Kwargs) (any, error) {
	switch {
	case c.method == nil:
		return c.fn(kw)
	case c.self != nil:
		// recv differs from c.self when the receiver was rebound at call time.
		return c.method(recv, kw)
	default:
		self, err := receiverArg(kw[SelfParam])
		if err != nil {
			return nil, err
		}
		delete(kw, SelfParam)
		return c.method(self, kw)
	}
}

func receiverArg(v any) (*Engine, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case *Engine:
		return r, nil
	default:
		return nil, fmt.Errorf("%w: got %T", domain.ErrInvalidReceiver, v)
	}
}

// eventsOf returns the events c answers: its marks plus any bindings baked by its type.
func eventsOf(c *Callable) []string {
	return dedupe(marks.eventsOf(c.origin), c.inherited)
}

func dedupe(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
