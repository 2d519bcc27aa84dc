// Package engine drives a run: one plan, then for each slice a file
// selection and a bounded loop of generate, apply, verify and review.
//
// The engine is strictly sequential. The working tree is written only by
// the apply step, and every slice outcome is persisted before the next slice
// starts, so a later fatal error still leaves a readable trail.
//
// Fatal errors (bad working directory, git listing failure, backend failure,
// unparsable planner/selector/implementer output, unsafe or malformed change
// records) abort the run. Failing checks and failing reviews are data.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/backend"
	"github.com/mrz1836/slicer/internal/clock"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/ctxutil"
	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/flock"
	"github.com/mrz1836/slicer/internal/git"
	"github.com/mrz1836/slicer/internal/runlog"
	"github.com/mrz1836/slicer/internal/validation"
	"github.com/mrz1836/slicer/internal/workspace"
)

// fatalErrorFile records the error that aborted a run.
const fatalErrorFile = "fatal-error.txt"

// Repository is what the engine needs from version control.
type Repository interface {
	workspace.Repository

	// TrackedFiles lists tracked files; failure is fatal to the run.
	TrackedFiles(ctx context.Context) ([]string, error)

	// ChangedPaths lists paths with uncommitted changes; failure yields an empty list.
	ChangedPaths(ctx context.Context) []string
}

// CheckRunner runs the verification commands of one attempt.
type CheckRunner interface {
	RunAll(ctx context.Context, commands []string, dir string) ([]domain.CheckResult, error)
}

// Engine executes runs against one backend.
type Engine struct {
	backend  backend.Backend
	clock    clock.Clock
	newRepo  func(dir string) Repository
	newCheck func(spec *config.Spec) CheckRunner
	newRunID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for run directory names and timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRepository replaces the git introspector factory.
func WithRepository(fn func(dir string) Repository) Option {
	return func(e *Engine) { e.newRepo = fn }
}

// WithCheckRunner replaces the check executor.
func WithCheckRunner(r CheckRunner) Option {
	return func(e *Engine) {
		e.newCheck = func(*config.Spec) CheckRunner { return r }
	}
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(e *Engine) { e.newRunID = fn }
}

// New creates an Engine that sends every role call to b.
func New(b backend.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: b,
		clock:   clock.RealClock{},
		newRepo: func(dir string) Repository { return git.NewIntrospector(dir) },
		newCheck: func(spec *config.Spec) CheckRunner {
			return validation.NewExecutor(spec.CommandTimeout())
		},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlanResult is the output of a plan-only invocation.
type PlanResult struct {
	Slices []domain.SlicePlan
	RunDir string
}

// Plan runs the planner only and logs its artifacts under a fresh run directory.
func (e *Engine) Plan(ctx context.Context, spec *config.Spec) (*PlanResult, error) {
	r, err := e.begin(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer r.close(ctx)
	result := &PlanResult{RunDir: r.log.Dir()}

	slices, err := r.plan(ctx)
	if err != nil {
		r.recordFatal(ctx, err)
		return result, err
	}
	result.Slices = slices
	return result, nil
}

// Execute runs the whole plan. It returns the run summary; a run whose slices
// failed is not an error. On a fatal error the summary built so far is
// returned alongside the error, and the error text is saved in the run directory.
func (e *Engine) Execute(ctx context.Context, spec *config.Spec, continueOnFailure bool) (*domain.RunSummary, error) {
	r, err := e.begin(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer r.close(ctx)
	summary, err := r.execute(ctx, continueOnFailure)
	if err != nil {
		r.recordFatal(ctx, err)
		return summary, err
	}
	return summary, nil
}

// begin checks the working directory, takes the run lock, creates the run
// directory and saves the spec. The caller must close the returned run.
func (e *Engine) begin(ctx context.Context, spec *config.Spec) (*run, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	info, err := os.Stat(spec.WorkingDirectory)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", errors.ErrWorkingDir, spec.WorkingDirectory)
	}

	lock, err := flock.Acquire(config.RunLockPath(spec.WorkingDirectory))
	if err != nil {
		return nil, err
	}

	log, err := runlog.New(config.RunsRoot(spec.WorkingDirectory), e.clock)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("run_dir", log.Dir()).Msg("run directory created")

	r := &run{
		spec:    spec,
		log:     log,
		roles:   Roles{Backend: e.backend, Spec: spec},
		repo:    e.newRepo(spec.WorkingDirectory),
		checks:  e.newCheck(spec),
		clock:   e.clock,
		runID:   e.newRunID(),
		workDir: spec.WorkingDirectory,
		lock:    lock,
	}
	if err := log.WriteJSON("spec.json", spec); err != nil {
		r.recordFatal(ctx, err)
		r.close(ctx)
		return nil, err
	}
	return r, nil
}
