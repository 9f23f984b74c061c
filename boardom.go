package boardom

import (
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/runner"
)

// Version is the release of the library and CLI. Builds override it with
// -ldflags "-X github.com/aretw0/boardom.Version=...".
var Version = "0.1.0"

// Core types, re-exported for consumers that only need the facade.
type (
	Engine      = engine.Engine
	Callable    = engine.Callable
	Type        = engine.Type
	TypeBuilder = engine.TypeBuilder
	Option      = engine.Option
	Middleware  = engine.Middleware
	Phase       = runner.Phase
)

var (
	// New creates an engine of the base type.
	New = engine.New
	// MustNew is like New but panics on error.
	MustNew = engine.MustNew
	// NewType starts building an engine type.
	NewType = engine.NewType

	NewFunc   = engine.NewFunc
	NewMethod = engine.NewMethod
	Required  = engine.Required
	Optional  = engine.Optional
	On        = engine.On
	Use       = engine.Use

	WithComponents = engine.WithComponents
	WithState      = engine.WithState
	WithLogger     = engine.WithLogger
	WithSettings   = engine.WithSettings
	WithHooks      = engine.WithHooks

	// CleanupState opens a scope that deletes state paths added inside it.
	CleanupState = engine.CleanupState
	WithCleanup  = engine.WithCleanup
)

// NewRunner creates a phase runner. See the runner package for options.
func NewRunner(opts ...runner.Option) *runner.Runner {
	return runner.New(opts...)
}
