package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
)

// Collector holds the dispatch metrics of one or more engines.
type Collector struct {
	events   *prometheus.CounterVec
	actions  *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewCollector creates the metrics under namespace and registers them with
// reg. A nil reg leaves them unregistered.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fired_total",
			Help:      "Events fired that had at least one action.",
		}, []string{"event"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_invocations_total",
			Help:      "Actions invoked, by event and callable.",
		}, []string{"event", "callable"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_errors_total",
			Help:      "Actions that returned an error.",
		}, []string{"event", "callable"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of action invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"event"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, m := range []prometheus.Collector{c.events, c.actions, c.failures, c.latency} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns engine hooks that record into c.
func (c *Collector) Hooks() engine.Hooks {
	return engine.Hooks{
		OnEvent: func(ev domain.Event, _ int) {
			c.events.WithLabelValues(ev.Name()).Inc()
		},
		OnAction: func(ev domain.Event, a *engine.Action, elapsed time.Duration, err error) {
			name := a.Callable().Name()
			c.actions.WithLabelValues(ev.Name(), name).Inc()
			c.latency.WithLabelValues(ev.Name()).Observe(elapsed.Seconds())
			if err != nil {
				c.failures.WithLabelValues(ev.Name(), name).Inc()
			}
		},
	}
}

// Chain combines hooks so that each runs in order.
func Chain(hooks ...engine.Hooks) engine.Hooks {
	return engine.Hooks{
		OnEvent: func(ev domain.Event, n int) {
			for _, h := range hooks {
				if h.OnEvent != nil {
					h.OnEvent(ev, n)
				}
			}
		},
		OnAction: func(ev domain.Event, a *engine.Action, elapsed time.Duration, err error) {
			for _, h := range hooks {
				if h.OnAction != nil {
					h.OnAction(ev, a, elapsed, err)
				}
			}
		},
	}
}
