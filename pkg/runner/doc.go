/*
Package runner drives engines through training-style phases.

A Phase names a stage and how many epochs and steps it runs. The Runner
fires the phase lifecycle events on the engine, keeps the epoch and step
counters in its state, wraps every step in a cleanup scope so per-step
values do not accumulate, and snapshots the final state.

# Usage

	r := runner.New(
		runner.WithLogger(logger),
		runner.WithStore(redis.New("localhost:6379", "", 0)),
	)

	snap, err := r.Run(ctx, e, runner.Phase{Name: "training", Epochs: 2, Steps: 100})
	if err != nil {
		log.Fatal(err)
	}

Counters for the "training" phase live at training.epoch and
training.global_step, which is where the middleware package's Epochs and
Steps conditions look for them.
*/
package runner
