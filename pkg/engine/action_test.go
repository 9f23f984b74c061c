package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
)

type call struct {
	name string
	args []any
	kw   domain.Kwargs
	want any
	err  error
}

func runCalls(t *testing.T, e *engine.Engine, event string, calls []call) {
	t.Helper()
	for _, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			res, err := e.EventKw(event, c.kw, c.args...)
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.Results{c.want}, res)
		})
	}
}

func product(kw domain.Kwargs) (any, error) {
	return kw["a"].(int) * kw["b"].(int), nil
}

func scaledProduct(kw domain.Kwargs) (any, error) {
	e := kw["engine"].(*engine.Engine)
	return kw["a"].(int) * kw["b"].(int) * e.GetOr("x", 0).(int), nil
}

func TestAction_PositionalArgumentsSkipEngineParam(t *testing.T) {
	e := engine.MustNew()
	e.MustRegister("f", engine.NewFunc("f", product, engine.Required("engine"), engine.Required("a"), engine.Required("b")))
	e.MustRegister("g", engine.NewFunc("g", product, engine.Required("a"), engine.Required("engine"), engine.Required("b")))
	e.MustRegister("h", engine.NewFunc("h", product, engine.Required("a"), engine.Required("b"), engine.Required("engine")))
	e.MustRegister("w", engine.NewFunc("w", product, engine.Required("a"), engine.Required("b")))

	for _, name := range []string{"f", "g", "h", "w"} {
		res, err := e.Event(name, 2, 3)
		require.NoError(t, err, name)
		assert.Equal(t, domain.Results{6}, res, name)
	}
}

func TestAction_KeywordArguments(t *testing.T) {
	e := engine.MustNew()
	e.MustRegister("f", engine.NewFunc("f", product, engine.Required("engine"), engine.Required("a"), engine.Required("b")))
	e.MustRegister("g", engine.NewFunc("g", product, engine.Required("a"), engine.Required("engine"), engine.Required("b")))
	e.MustRegister("h", engine.NewFunc("h", product, engine.Required("a"), engine.Required("b"), engine.Required("engine")))

	runCalls(t, e, "f", []call{
		{name: "all keywords", kw: domain.Kwargs{"a": 2, "b": 3}, want: 6},
		{name: "mixed", args: []any{2}, kw: domain.Kwargs{"b": 3}, want: 6},
		{name: "engine positional", args: []any{e, 2}, kw: domain.Kwargs{"b": 3}, want: 6},
		{name: "engine positional only", args: []any{e}, kw: domain.Kwargs{"a": 2, "b": 3}, want: 6},
		{name: "engine keyword", kw: domain.Kwargs{"engine": e, "a": 2, "b": 3}, want: 6},
	})
	runCalls(t, e, "g", []call{
		{name: "all keywords", kw: domain.Kwargs{"a": 2, "b": 3}, want: 6},
		{name: "engine in its slot", args: []any{2, e}, kw: domain.Kwargs{"b": 3}, want: 6},
		{name: "engine keyword", args: []any{2}, kw: domain.Kwargs{"engine": e, "b": 3}, want: 6},
	})
	runCalls(t, e, "h", []call{
		{name: "engine last", args: []any{2, 3, e}, want: 6},
		{name: "engine keyword", args: []any{2, 3}, kw: domain.Kwargs{"engine": e}, want: 6},
		{name: "all keywords", kw: domain.Kwargs{"a": 2, "b": 3, "engine": e}, want: 6},
	})
}

func TestAction_DefaultsAndExplicitReceivers(t *testing.T) {
	e1 := engine.MustNew(engine.WithState(map[string]any{"x": 7}))
	e2 := engine.MustNew(engine.WithState(map[string]any{"x": 11}))

	e1.MustRegister("f", engine.NewFunc("f", scaledProduct,
		engine.Required("engine"), engine.Required("a"), engine.Optional("b", 5)))
	runCalls(t, e1, "f", []call{
		{name: "default b", args: []any{2}, want: 70},
		{name: "positional b", args: []any{2, 3}, want: 42},
		{name: "keyword b", args: []any{2}, kw: domain.Kwargs{"b": 3}, want: 42},
		{name: "own engine keyword", args: []any{2}, kw: domain.Kwargs{"engine": e1}, want: 70},
		{name: "other engine keyword", args: []any{2}, kw: domain.Kwargs{"engine": e2}, want: 110},
		{name: "other engine keyword with b", args: []any{2, 3}, kw: domain.Kwargs{"engine": e2}, want: 66},
	})

	e1.MustRegister("g", engine.NewFunc("g", scaledProduct,
		engine.Required("a"), engine.Optional("engine", e2), engine.Optional("b", 5)))
	runCalls(t, e1, "g", []call{
		{name: "engine default", args: []any{2}, want: 110},
		{name: "engine default positional b", args: []any{2, 3}, want: 66},
		{name: "keyword overrides default", args: []any{2}, kw: domain.Kwargs{"engine": e1}, want: 70},
		{name: "positional overrides default", args: []any{2, e1}, want: 70},
		{name: "positional engine then b", args: []any{2, e1, 3}, want: 42},
		{name: "engine out of its slot", args: []any{2, 3, e1}, err: domain.ErrExtraArgs},
	})

	e1.MustRegister("h", engine.NewFunc("h", scaledProduct,
		engine.Optional("a", 13), engine.Optional("b", 5), engine.Optional("engine", e2)))
	runCalls(t, e1, "h", []call{
		{name: "all defaults", want: 715},
		{name: "keyword engine only b", kw: domain.Kwargs{"b": 3, "engine": e1}, want: 273},
		{name: "positional engine", args: []any{2, 3, e1}, want: 42},
		{name: "engine out of its slot", args: []any{2, e1}, kw: domain.Kwargs{"b": 3}, err: domain.ErrExtraArgs},
	})
}

func TestAction_FiringEngineIsDefaultReceiver(t *testing.T) {
	e1 := engine.MustNew(engine.WithState(map[string]any{"x": 10}))
	e2 := engine.MustNew(engine.WithState(map[string]any{"x": 20}))
	read := engine.NewFunc("read", func(kw domain.Kwargs) (any, error) {
		return kw["engine"].(*engine.Engine).GetOr("x", nil), nil
	}, engine.Required("engine"))
	e1.MustRegister("f", read)

	runCalls(t, e1, "f", []call{
		{name: "implicit", want: 10},
		{name: "explicit self", args: []any{e1}, want: 10},
		{name: "explicit other", args: []any{e2}, want: 20},
	})
}

func TestAction_Errors(t *testing.T) {
	e := engine.MustNew()
	e.MustRegister("f", engine.NewFunc("f", product, engine.Required("a"), engine.Required("b")))

	_, err := e.Event("f", 1)
	assert.ErrorIs(t, err, domain.ErrMissingArg)

	_, err = e.Event("f", 1, 2, 3)
	assert.ErrorIs(t, err, domain.ErrExtraArgs)
	assert.True(t, domain.IsUsage(err))

	_, err = e.EventKw("f", domain.Kwargs{"engine": 5}, 1, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidReceiver)
}

func TestNewAction(t *testing.T) {
	fn := engine.NewFunc("fn", product)

	a, err := engine.NewAction("go", fn)
	require.NoError(t, err)
	assert.Equal(t, "go", a.Event())
	assert.True(t, a.Callable().Same(fn))
	assert.Equal(t, "Action(on=go, func=fn)", a.String())

	_, err = engine.NewAction("_hidden", fn)
	assert.ErrorIs(t, err, domain.ErrInvalidEventName)

	_, err = engine.NewAction("go", nil)
	assert.ErrorIs(t, err, domain.ErrNotCallable)
}
