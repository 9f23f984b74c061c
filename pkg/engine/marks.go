package engine

import (
	"fmt"
	"sync"

	"github.com/aretw0/boardom/pkg/domain"
)

// Callback invokes the next layer of a middleware chain.
type Callback func(kw domain.Kwargs) (any, error)

// Middleware wraps a callable. It receives the resolved receiver, the next
// layer and the bound keyword arguments, and is expected to call next itself.
type Middleware func(e *Engine, next Callback, kw domain.Kwargs) (any, error)

// metadata is the side table of event marks and middleware, keyed by the
// originally constructed callable so that every binding of a method shares it.
type metadata struct {
	mu         sync.RWMutex
	events     map[*Callable][]string
	middleware map[*Callable][]Middleware
}

var marks = &metadata{
	events:     make(map[*Callable][]string),
	middleware: make(map[*Callable][]Middleware),
}

func (m *metadata) addEvents(c *Callable, names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[c] = dedupe(m.events[c], names)
}

func (m *metadata) eventsOf(c *Callable) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.events[c]...)
}

func (m *metadata) addMiddleware(c *Callable, mw Middleware) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.middleware[c] = append(m.middleware[c], mw)
}

func (m *metadata) middlewareOf(c *Callable) []Middleware {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Middleware(nil), m.middleware[c]...)
}

// Marker attaches event names to callables. Build one with On.
type Marker struct {
	names []string
}

// On returns a Marker for the given event names.
func On(names ...string) Marker {
	return Marker{names: append([]string(nil), names...)}
}

// Apply records the marker's events for c. If c is bound to an engine it is
// registered on that engine for those events right away.
func (m Marker) Apply(c *Callable) (*Callable, error) {
	if len(m.names) == 0 {
		return nil, domain.ErrNoEventNames
	}
	for _, name := range m.names {
		if err := domain.ValidateEventName(name); err != nil {
			return nil, err
		}
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil callable", domain.ErrNotCallable)
	}
	marks.addEvents(c.origin, m.names)
	if c.self != nil {
		if err := c.self.registerCallable(m.names, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Must is like Apply but panics on error. It suits package-level declarations.
func (m Marker) Must(c *Callable) *Callable {
	c, err := m.Apply(c)
	if err != nil {
		panic(err)
	}
	return c
}

// Wrapper attaches a middleware to callables. Build one with Use.
type Wrapper struct {
	mw Middleware
}

// Use returns a Wrapper for mw.
func Use(mw Middleware) Wrapper {
	return Wrapper{mw: mw}
}

// Apply appends the middleware to c's chain. The first middleware attached
// runs first and the callable itself runs last.
func (w Wrapper) Apply(c *Callable) (*Callable, error) {
	if w.mw == nil {
		return nil, fmt.Errorf("%w: nil middleware", domain.ErrNotCallable)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil callable", domain.ErrNotCallable)
	}
	marks.addMiddleware(c.origin, w.mw)
	return c, nil
}

// Must is like Apply but panics on error.
func (w Wrapper) Must(c *Callable) *Callable {
	c, err := w.Apply(c)
	if err != nil {
		panic(err)
	}
	return c
}
