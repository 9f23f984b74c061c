// Package middleware provides reusable engine middleware.
package middleware

import (
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
)

// State paths of the counters kept by the training loop.
const (
	EpochPath = "training.epoch"
	StepPath  = "training.global_step"
)

// Condition decides whether a gated callable runs for the receiver engine.
type Condition func(e *engine.Engine) bool

// Every runs the wrapped callable only when at least one condition holds.
// Skipped calls return a nil result. With no conditions the callable never runs.
func Every(conds ...Condition) engine.Middleware {
	return func(e *engine.Engine, next engine.Callback, kw domain.Kwargs) (any, error) {
		for _, cond := range conds {
			if cond(e) {
				return next(kw)
			}
		}
		return nil, nil
	}
}

// Seconds holds once d has elapsed since it last held, or since it was
// created. Minutes and hours are expressed through d.
func Seconds(d time.Duration) Condition {
	return elapsed(d, time.Now)
}

func elapsed(d time.Duration, now func() time.Time) Condition {
	var mu sync.Mutex
	last := now()
	return func(*engine.Engine) bool {
		mu.Lock()
		defer mu.Unlock()
		t := now()
		if t.Sub(last) <= d {
			return false
		}
		last = t
		return true
	}
}

// Counter holds when the integer at path in the receiver's state is a
// multiple of n. A missing or non-integer counter never holds.
func Counter(path string, n int64) Condition {
	return func(e *engine.Engine) bool {
		if n <= 0 {
			return false
		}
		v, err := e.Get(path)
		if err != nil {
			return false
		}
		count, err := cast.ToInt64E(v)
		if err != nil {
			return false
		}
		return count%n == 0
	}
}

// Epochs holds every n epochs.
func Epochs(n int64) Condition { return Counter(EpochPath, n) }

// Steps holds every n global training steps.
func Steps(n int64) Condition { return Counter(StepPath, n) }

// When adapts a predicate.
func When(fn func(e *engine.Engine) bool) Condition { return fn }
