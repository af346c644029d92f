// Package engine drives an upgrade run: it reads the installed version, asks the
// registry for a plan, executes each catalog's phases in order and moves the version
// stamp only when every catalog succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loykin/catalogup/internal/catalog"
	"github.com/loykin/catalogup/internal/common"
	"github.com/loykin/catalogup/internal/registry"
	"github.com/loykin/catalogup/internal/version"
)

// ErrNoVersionStamp is returned when the database carries no installed version and
// none was assumed.
var ErrNoVersionStamp = errors.New("no installed version stamp found")

// VersionStore reads and writes the installed version stamp.
type VersionStore interface {
	CurrentVersion(ctx context.Context) (version.Version, bool, error)
	SetVersion(ctx context.Context, v version.Version) error
}

// Planner selects catalogs for a transition. *registry.Registry implements it.
type Planner interface {
	CatalogsFor(installed, target version.Version) (registry.Plan, error)
}

// Step is the outcome of one catalog phase.
type Step struct {
	Version  string
	Phase    catalog.Phase
	Affected int64
	Err      error
	Duration time.Duration
}

// Observer is notified as a run progresses. Implementations must not block for long;
// their failures never affect the run.
type Observer interface {
	StateChanged(runID string, from, to State)
	PhaseCompleted(runID string, step Step)
}

// Result describes a finished run.
type Result struct {
	RunID     string
	Installed string
	Target    string
	Plan      []string
	Steps     []Step
	State     State
	Err       error
}

// Affected sums affected rows across all steps.
func (r *Result) Affected() int64 {
	var n int64
	for _, s := range r.Steps {
		n += s.Affected
	}
	return n
}

// Engine executes upgrade plans. One Engine runs one upgrade at a time and assumes
// exclusive access to the database.
type Engine struct {
	planner   Planner
	store     VersionStore
	observers []Observer
	assumed   version.Version
	logger    *common.Logger

	state State
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithAssumedVersion sets the installed version used when the database has no stamp.
func WithAssumedVersion(v version.Version) Option {
	return func(e *Engine) { e.assumed = v }
}

func WithLogger(l *common.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds an Engine over a planner and a version store.
func New(planner Planner, store VersionStore, opts ...Option) *Engine {
	e := &Engine{
		planner: planner,
		store:   store,
		logger:  common.GetLogger().WithComponent("engine"),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the state reached by the most recent run.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) installed(ctx context.Context) (version.Version, error) {
	v, ok, err := e.store.CurrentVersion(ctx)
	if err != nil {
		return version.Version{}, fmt.Errorf("read installed version: %w", err)
	}
	if ok {
		return v, nil
	}
	if !e.assumed.IsZero() {
		e.logger.Warn("no version stamp found, assuming installed version", "assumed", e.assumed.String())
		return e.assumed, nil
	}
	return version.Version{}, ErrNoVersionStamp
}

// Plan returns the catalogs an upgrade to target would execute, without running them.
func (e *Engine) Plan(ctx context.Context, target version.Version) (registry.Plan, error) {
	installed, err := e.installed(ctx)
	if err != nil {
		return registry.Plan{}, err
	}
	return e.planner.CatalogsFor(installed, target)
}

// Upgrade brings the database to target. On failure the run stops at the failing
// phase, already applied catalogs are left in place and the stamp is not moved.
// A failed run can be repeated: catalogs are written as guarded actions.
func (e *Engine) Upgrade(ctx context.Context, target version.Version) (*Result, error) {
	runID := uuid.NewString()
	logger := e.logger.WithRun(runID)
	res := &Result{RunID: runID, Target: target.String()}
	e.state = StateIdle

	fail := func(err error) (*Result, error) {
		e.transition(runID, StateFailed)
		res.State = StateFailed
		res.Err = err
		logger.Error("upgrade failed", "error", err)
		return res, err
	}

	installed, err := e.installed(ctx)
	if err != nil {
		return fail(err)
	}
	res.Installed = installed.String()

	plan, err := e.planner.CatalogsFor(installed, target)
	if err != nil {
		return fail(err)
	}
	res.Plan = plan.Versions()
	e.transition(runID, StatePlanSelected)
	logger.Info("upgrade plan selected", "installed", installed.String(), "target", target.String(), "catalogs", res.Plan)

	if plan.Empty() {
		e.transition(runID, StateCommitted)
		res.State = StateCommitted
		logger.Info("schema already at target version")
		return res, nil
	}

	for _, c := range plan.Catalogs {
		clog := logger.WithVersion(c.TargetVersion().String())
		for _, phase := range catalog.Phases(c) {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			e.transition(runID, phaseState(phase))

			start := time.Now()
			n, err := catalog.Run(ctx, c, phase)
			step := Step{
				Version:  c.TargetVersion().String(),
				Phase:    phase,
				Affected: n,
				Err:      err,
				Duration: time.Since(start),
			}
			res.Steps = append(res.Steps, step)
			e.phaseCompleted(runID, step)
			if err != nil {
				return fail(err)
			}
			clog.Info("catalog phase completed", "phase", string(phase), "affected", n, "duration", step.Duration)
		}
	}

	if err := e.store.SetVersion(ctx, target); err != nil {
		return fail(fmt.Errorf("write version stamp: %w", err))
	}
	e.transition(runID, StateCommitted)
	res.State = StateCommitted
	logger.Info("upgrade committed", "version", target.String(), "affected", res.Affected())
	return res, nil
}

func phaseState(p catalog.Phase) State {
	if p == catalog.PhaseDDL {
		return StateDDLPhase
	}
	return StateDMLPhase
}

func (e *Engine) transition(runID string, to State) {
	from := e.state
	if from == to {
		return
	}
	e.state = to
	for _, o := range e.observers {
		o.StateChanged(runID, from, to)
	}
}

func (e *Engine) phaseCompleted(runID string, step Step) {
	for _, o := range e.observers {
		o.PhaseCompleted(runID, step)
	}
}
