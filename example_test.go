package boardom_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/boardom"
	"github.com/aretw0/boardom/pkg/domain"
)

// Example registers a marked function and fires its event.
func Example() {
	double := boardom.On("train_step").Must(boardom.NewFunc("double", func(kw domain.Kwargs) (any, error) {
		return 2 * kw["x"].(int), nil
	}, boardom.Required("x")))

	e, err := boardom.New(boardom.WithComponents(double))
	if err != nil {
		log.Fatal(err)
	}

	results, err := e.Event("train_step", 21)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(results)
	// Output: [42]
}

// ExampleNewRunner drives an engine through two epochs of three steps.
// Values written during a step are removed when the step ends.
func ExampleNewRunner() {
	e := boardom.MustNew()
	e.MustRegister("training_step", boardom.NewFunc("remember", func(kw domain.Kwargs) (any, error) {
		eng := kw["engine"].(*boardom.Engine)
		return nil, eng.Set("training.last", kw["global_step"])
	}, boardom.Required("engine"), boardom.Required("global_step")))

	snap, err := boardom.NewRunner().Run(context.Background(), e, boardom.Phase{Name: "training", Epochs: 2, Steps: 3})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(snap.State.GetOr("training.global_step", nil), e.Contains("training.last"))
	// Output: 5 false
}

// ExampleNewType declares a type whose methods answer events and whose
// values start in the state of each instance.
func ExampleNewType() {
	bump := boardom.On("tick").Must(boardom.NewMethod("bump", func(self *boardom.Engine, _ domain.Kwargs) (any, error) {
		n := self.GetOr("ticks", 0).(int) + 1
		return n, self.Set("ticks", n)
	}))
	counter := boardom.NewType("Counter", nil).Value("ticks", 0).Method(bump).MustBuild()

	e, err := counter.New()
	if err != nil {
		log.Fatal(err)
	}
	for range 3 {
		if _, err := e.Event("tick"); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println(e.Type().Name(), e.GetOr("ticks", nil))
	// Output: Counter 3
}
