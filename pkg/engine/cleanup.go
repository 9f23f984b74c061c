package engine

import (
	"errors"
	"slices"
	"strings"

	"github.com/aretw0/boardom/pkg/domain"
)

// Cleanup deletes state paths created during a scope.
type Cleanup struct {
	engine *Engine
	before map[string]struct{}
	done   bool
}

// CleanupState records every path currently reachable in e's state.
// Close the returned scope, usually with defer, to delete what was added since.
func CleanupState(e *Engine) *Cleanup {
	before := make(map[string]struct{})
	for _, p := range e.State().Paths() {
		before[p] = struct{}{}
	}
	return &Cleanup{engine: e, before: before}
}

// Close deletes every path present now but absent when the scope began.
// Paths that already vanished with a deleted parent are ignored. Calling
// Close more than once is a no-op.
func (c *Cleanup) Close() error {
	if c.done {
		return nil
	}
	c.done = true

	var added []string
	for _, p := range c.engine.State().Paths() {
		if _, ok := c.before[p]; !ok {
			added = append(added, p)
		}
	}
	slices.SortStableFunc(added, func(a, b string) int {
		return strings.Count(a, ".") - strings.Count(b, ".")
	})

	var errs []error
	for _, p := range added {
		if !c.engine.Contains(p) {
			continue
		}
		if err := c.engine.Delete(p); err != nil && !domain.IsNotFound(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithCleanup runs fn inside a cleanup scope. The scope closes even if fn
// panics; the panic is not recovered.
func WithCleanup(e *Engine, fn func() error) (err error) {
	c := CleanupState(e)
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return fn()
}
