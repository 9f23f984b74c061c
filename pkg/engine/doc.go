/*
Package engine implements the event/action runtime components are built from.

An Engine owns one hierarchical State and a table from event name to an
ordered set of Actions. Firing an event runs every action synchronously, in
registration order, and collects their results:

	step := engine.On("train_step").Must(engine.NewFunc("step", func(kw domain.Kwargs) (any, error) {
		return kw["batch"], nil
	}, engine.Required("batch")))

	e, _ := engine.New(engine.WithComponents(step))
	results, _ := e.Event("train_step", 3) // [3]

Names resolve through three layers in a fixed order: registered events,
then the state contents, then the methods declared on the engine's Type.

Types are built with NewType. Build bakes the event bindings of every
method, so an override of a marked base method keeps answering the base
method's events.

Callables carry their event marks and middleware in a side table keyed by
the callable they were created as, shared by every binding of a method.
*/
package engine
