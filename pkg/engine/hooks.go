package engine

import (
	"time"

	"github.com/aretw0/boardom/pkg/domain"
)

// Hooks observe dispatch. Either field may be nil.
type Hooks struct {
	// OnEvent runs before the actions of a fired event.
	OnEvent func(ev domain.Event, actions int)
	// OnAction runs after each action, with its error if it failed.
	OnAction func(ev domain.Event, a *Action, elapsed time.Duration, err error)
}

func (h Hooks) event(ev domain.Event, actions int) {
	if h.OnEvent != nil {
		h.OnEvent(ev, actions)
	}
}

func (h Hooks) action(ev domain.Event, a *Action, elapsed time.Duration, err error) {
	if h.OnAction != nil {
		h.OnAction(ev, a, elapsed, err)
	}
}
