package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cast"

	"github.com/aretw0/boardom/internal/logging"
	"github.com/aretw0/boardom/pkg/domain"
	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/ports"
	"github.com/aretw0/boardom/pkg/session"
	"github.com/aretw0/boardom/pkg/snapshot"
)

// Counter keys kept under each phase's state mapping.
const (
	EpochKey      = "epoch"
	StepKey       = "step"
	GlobalStepKey = "global_step"
	// CompletedKey counts the steps that finished, across runs and resumes.
	CompletedKey = "completed_steps"
)

// Phase is one stage of a run, such as "training" or "validation".
type Phase struct {
	Name string `mapstructure:"name"`
	// Epochs defaults to one.
	Epochs int `mapstructure:"epochs"`
	Steps  int `mapstructure:"steps"`
}

func (p Phase) epochs() int {
	if p.Epochs <= 0 {
		return 1
	}
	return p.Epochs
}

func (p Phase) validate() error {
	if err := domain.ValidateEventName(p.Name); err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if engine.IsReserved(p.Name) {
		return fmt.Errorf("phase: %w: %q", domain.ErrReservedName, p.Name)
	}
	if p.Steps < 0 || p.Epochs < 0 {
		return fmt.Errorf("%w: phase %s has negative epochs or steps", domain.ErrUsage, p.Name)
	}
	return nil
}

// Runner drives an engine through phases by firing its lifecycle events.
type Runner struct {
	logger   *slog.Logger
	store    ports.SnapshotStore
	locker   ports.Locker
	lockTTL  time.Duration
	cleanup  bool
	session  string
	sessions *session.Manager
}

// New creates a Runner. Without options it logs nothing, persists nothing
// and cleans up after every step.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:  logging.NewNop(),
		cleanup: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store != nil {
		sessOpts := []session.Option{session.WithLogger(r.logger)}
		if r.locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(r.locker, r.lockTTL))
		}
		r.sessions = session.NewManager(r.store, sessOpts...)
	}
	return r
}

// Run executes the phases in order and returns a snapshot of the final state.
//
// Each phase fires <name>_start, then for every epoch <name>_epoch_start,
// <name>_step once per step and <name>_epoch_end, and finally <name>_end.
// Before each event the counters <name>.epoch, <name>.step and
// <name>.global_step are updated. Epoch and step restart at zero on every
// run; global_step continues from <name>.completed_steps, so a resumed run
// picks up where the saved one stopped. Step events receive the same
// counters as keyword arguments.
//
// Cancelling ctx stops the run between steps. The state reached so far is
// still snapshotted and saved, and the context error is returned with it.
func (r *Runner) Run(ctx context.Context, e *engine.Engine, phases ...Phase) (*snapshot.Snapshot, error) {
	for _, p := range phases {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	var runErr error
	for _, p := range phases {
		if runErr = r.runPhase(ctx, e, p); runErr != nil {
			break
		}
	}

	snap, err := r.persist(context.WithoutCancel(ctx), e)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%w (persist: %v)", runErr, err)
		}
		return nil, err
	}
	return snap, runErr
}

// Resume replaces e's state with the snapshot stored under id. Phase
// counters come back with it.
func (r *Runner) Resume(ctx context.Context, e *engine.Engine, id string) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: resume needs a snapshot store", domain.ErrUsage)
	}
	snap, err := r.sessions.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("resume %s: %w", id, err)
	}
	if err := snapshot.Restore(e, snap); err != nil {
		return fmt.Errorf("resume %s: %w", id, err)
	}
	r.logger.Info("state restored", "snapshot", id, "saved_at", snap.SavedAt)
	return nil
}

// ResumeOrSeed restores the snapshot stored under the session id set with
// WithSession or, when there is none yet, stores e's current state there.
// It reports whether a snapshot was restored.
func (r *Runner) ResumeOrSeed(ctx context.Context, e *engine.Engine) (bool, error) {
	if r.sessions == nil || r.session == "" {
		return false, fmt.Errorf("%w: resume or seed needs a snapshot store and a session id", domain.ErrUsage)
	}
	snap, err := r.sessions.LoadOrTake(ctx, r.session, e)
	if err != nil {
		return false, fmt.Errorf("session %s: %w", r.session, err)
	}
	if snap.EngineID == e.ID() {
		r.logger.Info("session seeded", "session", r.session)
		return false, nil
	}
	if err := snapshot.Restore(e, snap); err != nil {
		return false, fmt.Errorf("session %s: %w", r.session, err)
	}
	r.logger.Info("state restored", "session", r.session, "saved_at", snap.SavedAt)
	return true, nil
}

func (r *Runner) runPhase(ctx context.Context, e *engine.Engine, p Phase) error {
	if !e.Contains(p.Name) {
		if err := e.Set(p.Name, map[string]any{EpochKey: 0, StepKey: 0, GlobalStepKey: 0, CompletedKey: 0}); err != nil {
			return fmt.Errorf("phase %s: %w", p.Name, err)
		}
	}
	global, err := cast.ToIntE(e.GetOr(p.Name+"."+CompletedKey, 0))
	if err != nil {
		return fmt.Errorf("%w: phase %s: %s: %v", domain.ErrUsage, p.Name, CompletedKey, err)
	}
	log := r.logger.With("phase", p.Name)
	log.Info("phase started", "epochs", p.epochs(), "steps", p.Steps)

	if err := r.fire(e, p.Name+"_start", nil); err != nil {
		return err
	}

	for epoch := range p.epochs() {
		if err := r.counters(e, p.Name, epoch, 0, global); err != nil {
			return err
		}
		if err := r.fire(e, p.Name+"_epoch_start", nil); err != nil {
			return err
		}
		for step := range p.Steps {
			if err := ctx.Err(); err != nil {
				log.Warn("phase interrupted", "epoch", epoch, "step", step)
				return fmt.Errorf("phase %s: %w", p.Name, err)
			}
			if err := r.counters(e, p.Name, epoch, step, global); err != nil {
				return err
			}
			kw := domain.Kwargs{EpochKey: epoch, StepKey: step, GlobalStepKey: global}
			if err := r.step(e, p.Name+"_step", kw); err != nil {
				return err
			}
			global++
			if err := e.Set(p.Name+"."+CompletedKey, global); err != nil {
				return fmt.Errorf("phase %s: %w", p.Name, err)
			}
		}
		if err := r.fire(e, p.Name+"_epoch_end", nil); err != nil {
			return err
		}
	}

	if err := r.fire(e, p.Name+"_end", nil); err != nil {
		return err
	}
	log.Info("phase finished", "global_steps", global)
	return nil
}

func (r *Runner) counters(e *engine.Engine, phase string, epoch, step, global int) error {
	for key, v := range map[string]int{EpochKey: epoch, StepKey: step, GlobalStepKey: global} {
		if err := e.Set(phase+"."+key, v); err != nil {
			return fmt.Errorf("phase %s: %w", phase, err)
		}
	}
	return nil
}

func (r *Runner) fire(e *engine.Engine, name string, kw domain.Kwargs) error {
	_, err := e.EventKw(name, kw)
	return err
}

// step fires a step event, inside a cleanup scope when enabled.
func (r *Runner) step(e *engine.Engine, name string, kw domain.Kwargs) error {
	if !r.cleanup {
		return r.fire(e, name, kw)
	}
	return engine.WithCleanup(e, func() error {
		return r.fire(e, name, kw)
	})
}

func (r *Runner) persist(ctx context.Context, e *engine.Engine) (*snapshot.Snapshot, error) {
	snap, err := snapshot.Take(e)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if r.sessions == nil {
		return snap, nil
	}
	id := e.ID()
	if r.session != "" {
		id = r.session
	}
	if err := r.sessions.Save(ctx, id, snap); err != nil {
		return nil, fmt.Errorf("save snapshot %s: %w", id, err)
	}
	r.logger.Info("snapshot saved", "engine", e.ID(), "id", id)
	return snap, nil
}
