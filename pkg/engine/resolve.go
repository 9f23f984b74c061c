package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/state"
)

// Kind tags what a name resolved to.
type Kind int

const (
	KindNotFound Kind = iota
	KindEvent
	KindMember
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindMember:
		return "member"
	case KindState:
		return "state"
	default:
		return "not found"
	}
}

// Resolution is the outcome of looking a name up in the merged namespace.
type Resolution struct {
	Kind Kind
	Name string
	// Member is the method member of the same name, bound to the engine. For
	// KindEvent it is set when the event shadows a member.
	Member *Callable
	// Value holds the state value, or the state itself for the "state" member.
	Value any
	// Err explains a KindNotFound resolution.
	Err error
}

// Trigger fires an event resolved through Get.
type Trigger func(kw domain.Kwargs, args ...any) (domain.Results, error)

// Resolve looks path up in priority order: a registered event, the "state"
// member, the state contents, then the type's methods. Only single-segment
// paths can name events or members.
func (e *Engine) Resolve(path string) Resolution {
	keys := state.Split(path)
	r := Resolution{Name: strings.Join(keys, ".")}

	if len(keys) == 1 {
		name := keys[0]
		if e.HasEvent(name) {
			r.Kind = KindEvent
			r.Member, _ = e.Method(name)
			return r
		}
		if name == stateName {
			r.Kind, r.Value = KindMember, e.state
			return r
		}
	}

	v, err := e.state.GetPath(keys)
	if err == nil {
		r.Kind, r.Value = KindState, v
		return r
	}

	if len(keys) == 1 {
		if m, ok := e.Method(keys[0]); ok {
			r.Kind, r.Member = KindMember, m
			return r
		}
	}

	r.Kind = KindNotFound
	if _, moved := e.prior[r.Name]; moved && domain.IsNotFound(err) {
		err = fmt.Errorf("%w: %q was moved into state and has since been deleted", domain.ErrNotFound, r.Name)
	}
	r.Err = err
	return r
}

// Get resolves path. An event yields a Trigger, a method member its bound
// *Callable, and a state entry its value.
func (e *Engine) Get(path string) (any, error) {
	r := e.Resolve(path)
	switch r.Kind {
	case KindEvent:
		name := r.Name
		return Trigger(func(kw domain.Kwargs, args ...any) (domain.Results, error) {
			return e.fire(name, kw, args)
		}), nil
	case KindMember:
		if r.Member != nil {
			return r.Member, nil
		}
		return r.Value, nil
	case KindState:
		return r.Value, nil
	default:
		return nil, r.Err
	}
}

// Call invokes name the way attribute access would.
//
// An event is fired; when it shadows a method member the member runs first
// and its result leads the list. A method member is called directly, as is a
// *Callable stored in the state. Anything else is not callable.
func (e *Engine) Call(name string, kw domain.Kwargs, args ...any) (any, error) {
	r := e.Resolve(name)
	switch r.Kind {
	case KindEvent:
		return e.fire(r.Name, kw, args)
	case KindMember:
		if r.Member != nil {
			return e.call(r.Name, r.Member, kw, args)
		}
	case KindState:
		if c, ok := r.Value.(*Callable); ok {
			return e.call(r.Name, c, kw, args)
		}
	default:
		return nil, r.Err
	}
	return nil, fmt.Errorf("%w: %q is a %s", domain.ErrNotCallable, r.Name, r.Kind)
}

// Method returns the method member name bound to e, bypassing events.
// Static members are returned unbound.
func (e *Engine) Method(name string) (*Callable, bool) {
	m, ok := e.typ.members[name]
	if !ok || m.kind != methodMember {
		return nil, false
	}
	return m.method.Bind(e).withInherited(e.typ.events[name]), true
}

func (e *Engine) call(name string, c *Callable, kw domain.Kwargs, args []any) (any, error) {
	a := &Action{event: name, target: c}
	return a.invoke(e, slices.Clone(args), cloneKwargs(kw))
}

// fire dispatches name with a shadowed method member, if any, leading.
func (e *Engine) fire(name string, kw domain.Kwargs, args []any) (domain.Results, error) {
	ev, err := domain.NewEvent(name, args, kw)
	if err != nil {
		return nil, err
	}
	registered := e.Actions(name)
	m, ok := e.Method(name)
	if !ok {
		if len(registered) == 0 {
			return nil, nil
		}
		return e.dispatch(ev, registered)
	}

	lead := &Action{event: name, target: m}
	actions := []*Action{lead}
	for _, a := range registered {
		if a.target.Same(m) {
			continue
		}
		actions = append(actions, a)
	}
	return e.dispatch(ev, actions)
}

func cloneKwargs(kw domain.Kwargs) domain.Kwargs {
	if kw == nil {
		return domain.Kwargs{}
	}
	return maps.Clone(kw)
}
