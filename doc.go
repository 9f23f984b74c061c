/*
Package boardom is an event/action runtime for composing training loops out of
independent components.

Components never reference each other. They declare callables answering
named events, and share one hierarchical state per engine. Firing an event
runs every callable registered for it, in registration order, and returns
their results.

# Concept

An Engine owns a State, an ordered tree addressed by dotted paths such as
"training.global_step", and a table from event name to actions. Callables
are plain functions, methods declared on an engine Type, or methods bound to
a specific engine. Each one names its parameters; an "engine" parameter
always receives the engine the call operates on.

Middleware wraps callables. The middleware package ships Every, which gates
a callable on elapsed time or on state counters.

# Usage

	step := boardom.On("training_step").Must(boardom.NewFunc("log", func(kw domain.Kwargs) (any, error) {
		return kw["step"], nil
	}, boardom.Required("step")))

	e := boardom.MustNew(boardom.WithComponents(step))
	snap, err := boardom.NewRunner().Run(ctx, e, boardom.Phase{Name: "training", Steps: 10})

The runner fires training_start, training_epoch_start, training_step,
training_epoch_end and training_end, keeps the counters in state and
returns a snapshot of the final state. Snapshots serialize to YAML and can
be persisted with the memory or redis adapters.
*/
package boardom
