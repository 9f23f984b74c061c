package registry

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/middleware"
)

// Builtins returns a registry holding the bundled components:
//
//   - "decay" writes value = initial * rate^global_step to a state key.
//   - "averager" keeps a running sum, count and mean of a state key.
//   - "progress" logs the training counters every N global steps.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("decay", Decay)
	r.Register("averager", Averager)
	r.Register("progress", Progress)
	return r
}

// DecayOptions configures the decay component.
type DecayOptions struct {
	Event   string  `mapstructure:"event"`
	Key     string  `mapstructure:"key"`
	Initial float64 `mapstructure:"initial"`
	Rate    float64 `mapstructure:"rate"`
}

// Decay builds a callable that writes an exponentially decaying value, a
// stand-in for a training loss.
func Decay(opts map[string]any) (any, error) {
	o := DecayOptions{Event: "training_step", Key: "training.loss", Initial: 1, Rate: 0.9}
	if err := Options(opts, &o); err != nil {
		return nil, err
	}

	fn := engine.NewFunc("decay", func(kw domain.Kwargs) (any, error) {
		e := kw[engine.ReceiverParam].(*engine.Engine)
		step, err := cast.ToFloat64E(e.GetOr(middleware.StepPath, 0))
		if err != nil {
			return nil, fmt.Errorf("decay: %s: %w", middleware.StepPath, err)
		}
		v := o.Initial * math.Pow(o.Rate, step)
		return v, e.Set(o.Key, v)
	}, engine.Required(engine.ReceiverParam))

	return engine.On(o.Event).Apply(fn)
}

// AveragerOptions configures the averager component.
type AveragerOptions struct {
	Event  string `mapstructure:"event"`
	Key    string `mapstructure:"key"`
	Prefix string `mapstructure:"prefix"`
}

// Averager builds an engine component whose attach hook seeds the running
// totals under prefix on the host, so they outlive per-step cleanup scopes.
// The parent of a dotted prefix must already exist.
func Averager(opts map[string]any) (any, error) {
	o := AveragerOptions{Event: "training_step", Key: "training.loss", Prefix: "averager"}
	if err := Options(opts, &o); err != nil {
		return nil, err
	}
	sumKey, countKey, meanKey := o.Prefix+".sum", o.Prefix+".count", o.Prefix+".mean"

	add := engine.NewMethod("accumulate", func(self *engine.Engine, _ domain.Kwargs) (any, error) {
		raw, err := self.Get(o.Key)
		if err != nil {
			return nil, err
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number: %v", domain.ErrUsage, o.Key, err)
		}
		sum := cast.ToFloat64(self.GetOr(sumKey, 0.0)) + v
		count := cast.ToInt64(self.GetOr(countKey, 0)) + 1
		mean := sum / float64(count)
		for key, val := range map[string]any{sumKey: sum, countKey: count, meanKey: mean} {
			if err := self.Set(key, val); err != nil {
				return nil, err
			}
		}
		return mean, nil
	})
	if _, err := engine.On(o.Event).Apply(add); err != nil {
		return nil, err
	}

	typ, err := engine.NewType("Averager", nil).
		Method(add).
		Attach(func(_, target *engine.Engine) error {
			if target.Contains(o.Prefix) {
				return nil
			}
			return target.Set(o.Prefix, map[string]any{"sum": 0.0, "count": int64(0), "mean": 0.0})
		}).
		Build()
	if err != nil {
		return nil, err
	}
	return typ.New()
}

// ProgressOptions configures the progress component.
type ProgressOptions struct {
	Event string   `mapstructure:"event"`
	Every int64    `mapstructure:"every"`
	Keys  []string `mapstructure:"keys"`
}

// Progress builds a callable logging the epoch, the global step and the
// configured state keys every N global steps.
func Progress(opts map[string]any) (any, error) {
	o := ProgressOptions{Event: "training_step", Every: 1}
	if err := Options(opts, &o); err != nil {
		return nil, err
	}
	if o.Every <= 0 {
		return nil, fmt.Errorf("%w: progress every must be positive, got %d", domain.ErrUsage, o.Every)
	}

	fn := engine.NewFunc("progress", func(kw domain.Kwargs) (any, error) {
		e := kw[engine.ReceiverParam].(*engine.Engine)
		attrs := []any{
			"epoch", e.GetOr(middleware.EpochPath, nil),
			"step", e.GetOr(middleware.StepPath, nil),
		}
		for _, key := range o.Keys {
			attrs = append(attrs, key, e.GetOr(key, nil))
		}
		e.Logger().Info("progress", attrs...)
		return e.GetOr(middleware.StepPath, nil), nil
	}, engine.Required(engine.ReceiverParam))

	fn, err := engine.Use(middleware.Every(middleware.Steps(o.Every))).Apply(fn)
	if err != nil {
		return nil, err
	}
	return engine.On(o.Event).Apply(fn)
}
