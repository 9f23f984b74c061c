package engine

import (
	"fmt"
	"slices"

	"github.com/aretw0/boardom/pkg/domain"
)

// Action binds one event name to one callable.
type Action struct {
	event  string
	target *Callable
}

// NewAction validates the event name and returns the binding.
func NewAction(event string, c *Callable) (*Action, error) {
	if err := domain.ValidateEventName(event); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil callable", domain.ErrNotCallable)
	}
	return &Action{event: event, target: c}, nil
}

// Event returns the event name the action answers.
func (a *Action) Event() string { return a.event }

// Callable returns the bound callable.
func (a *Action) Callable() *Callable { return a.target }

func (a *Action) String() string {
	return fmt.Sprintf("Action(on=%s, func=%s)", a.event, a.target)
}

// Invoke runs the action for ev fired on caller.
func (a *Action) Invoke(caller *Engine, ev domain.Event) (any, error) {
	return a.invoke(caller, ev.Args(), ev.Kwargs())
}

// invoke resolves the receiver, binds the arguments and runs the middleware
// chain around the target. args and kw must be owned by the call.
func (a *Action) invoke(caller *Engine, args []any, kw domain.Kwargs) (any, error) {
	params := a.target.Params()

	recv, args, err := a.resolveReceiver(caller, params, args, kw)
	if err != nil {
		return nil, err
	}

	final, err := bindArgs(params, recv, args, kw)
	if err != nil {
		return nil, err
	}

	return a.chain(recv)(final)
}

// resolveReceiver picks the engine the call operates on, in priority order:
// a leading engine argument for bound methods, the "engine" keyword, an
// engine in the "engine" parameter's position, that parameter's engine
// default, and finally the engine that fired the event.
func (a *Action) resolveReceiver(caller *Engine, params []Param, args []any, kw domain.Kwargs) (*Engine, []any, error) {
	var recv *Engine

	if a.target.self != nil && len(args) > 0 {
		if e, ok := args[0].(*Engine); ok {
			recv, args = e, args[1:]
		}
	}

	if v, ok := kw[ReceiverParam]; ok {
		e, ok := v.(*Engine)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s got %T", domain.ErrInvalidReceiver, a.target.name, v)
		}
		recv = e
	} else if idx := paramIndex(params, ReceiverParam); idx >= 0 {
		taken := false
		if idx < len(args) {
			if e, ok := args[idx].(*Engine); ok {
				recv, taken = e, true
				args = slices.Delete(slices.Clone(args), idx, idx+1)
			}
		}
		if !taken && params[idx].HasDefault {
			if e, ok := params[idx].Default.(*Engine); ok {
				recv = e
			}
		}
	}

	if recv == nil {
		recv = caller
	}
	return recv, args, nil
}

// bindArgs fills every declared parameter from keywords first, then from the
// remaining positional arguments, then from defaults.
func bindArgs(params []Param, recv *Engine, args []any, kw domain.Kwargs) (domain.Kwargs, error) {
	final := make(domain.Kwargs, len(params))
	for _, p := range params {
		if p.Name == ReceiverParam {
			final[p.Name] = recv
			continue
		}
		if v, ok := kw[p.Name]; ok {
			final[p.Name] = v
			continue
		}
		if len(args) > 0 {
			final[p.Name], args = args[0], args[1:]
			continue
		}
		if p.HasDefault {
			final[p.Name] = p.Default
			continue
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingArg, p.Name)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("%w: %d left over", domain.ErrExtraArgs, len(args))
	}
	return final, nil
}

// chain composes the middleware so that the first one attached is outermost.
func (a *Action) chain(recv *Engine) Callback {
	call := Callback(func(kw domain.Kwargs) (any, error) {
		return a.target.invoke(recv, kw)
	})
	mws := marks.middlewareOf(a.target.origin)
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], call
		call = func(kw domain.Kwargs) (any, error) {
			return mw(recv, next, kw)
		}
	}
	return call
}

func paramIndex(params []Param, name string) int {
	return slices.IndexFunc(params, func(p Param) bool { return p.Name == name })
}
