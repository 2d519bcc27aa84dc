package engine

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/clock"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/ctxutil"
	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/flock"
	"github.com/mrz1836/slicer/internal/logging"
	"github.com/mrz1836/slicer/internal/runlog"
	"github.com/mrz1836/slicer/internal/validation"
	"github.com/mrz1836/slicer/internal/workspace"
)

// unsafeIDChars matches characters not allowed in a slice directory name.
var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// run is the state of one execution. It is owned by a single goroutine.
type run struct {
	spec    *config.Spec
	log     *runlog.Logger
	roles   Roles
	repo    Repository
	checks  CheckRunner
	clock   clock.Clock
	runID   string
	workDir string
	lock    *flock.File

	// repoFiles is refreshed after every apply and every slice.
	repoFiles []string
}

// plan lists the repository and asks for the slices.
func (r *run) plan(ctx context.Context) ([]domain.SlicePlan, error) {
	if err := r.refreshRepoFiles(ctx); err != nil {
		return nil, err
	}
	contextText := workspace.LoadContextFiles(r.workDir, r.spec.ContextFiles)

	slices, err := r.roles.Plan(ctx, r.log, r.repoFiles, contextText)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int("slices", len(slices)).Msg("plan accepted")
	return slices, nil
}

func (r *run) execute(ctx context.Context, continueOnFailure bool) (*domain.RunSummary, error) {
	slices, err := r.plan(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.RunSummary{
		RunID:               r.runID,
		StartedAt:           r.clock.Now(),
		RunDir:              r.log.Dir(),
		Slices:              []domain.SliceSummary{},
		InitialChangedPaths: nonNil(r.repo.ChangedPaths(ctx)),
	}
	if err := r.log.WriteJSON("summary-progress.json", summary); err != nil {
		return summary, err
	}

	for i, slice := range slices {
		if err := ctxutil.Canceled(ctx); err != nil {
			return summary, err
		}

		sliceSummary, err := r.runSlice(ctx, i+1, slice)
		if err != nil {
			return summary, err
		}

		summary.Slices = append(summary.Slices, sliceSummary)
		summary.Failed = summary.Failed || !sliceSummary.Passed
		if err := r.log.WriteJSON("summary-progress.json", summary); err != nil {
			return summary, err
		}

		if !sliceSummary.Passed && !continueOnFailure {
			summary.StoppedAtSlice = slice.ID
			zerolog.Ctx(ctx).Warn().Str("slice_id", slice.ID).Msg("slice failed, stopping run")
			break
		}
		if err := r.refreshRepoFiles(ctx); err != nil {
			return summary, err
		}
	}

	ended := r.clock.Now()
	summary.EndedAt = &ended
	summary.FinalChangedPaths = nonNil(r.repo.ChangedPaths(ctx))
	if err := r.log.WriteJSON("summary-final.json", summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// runSlice selects files for a slice and runs its attempt loop.
func (r *run) runSlice(ctx context.Context, index int, slice domain.SlicePlan) (domain.SliceSummary, error) {
	log := zerolog.Ctx(ctx).With().Str("slice_id", slice.ID).Logger()
	ctx = log.WithContext(ctx)
	log.Info().Int("slice_num", index).Str("title", slice.Title).Msg("slice started")

	sliceLog, err := r.log.Sub(SliceDirName(index, slice.ID))
	if err != nil {
		return domain.SliceSummary{}, err
	}
	if err := sliceLog.WriteJSON("slice.json", slice); err != nil {
		return domain.SliceSummary{}, err
	}

	selectLog, err := sliceLog.Sub("01-file-selection")
	if err != nil {
		return domain.SliceSummary{}, err
	}
	sel, err := r.roles.SelectFiles(ctx, selectLog, slice, r.repoFiles)
	if err != nil {
		return domain.SliceSummary{}, err
	}
	log.Debug().Strs("files_to_read", sel.FilesToRead).Strs("files_to_create", sel.FilesToCreate).Msg("files selected")

	result := domain.SliceSummary{
		Slice:    slice,
		Status:   domain.SliceStatusFailed,
		Attempts: []domain.AttemptRecord{},
	}
	var touched domain.PathSet
	feedback := ""

	for attempt := 1; attempt <= r.spec.MaxAttemptsPerSlice; attempt++ {
		if err := ctxutil.Canceled(ctx); err != nil {
			return domain.SliceSummary{}, err
		}
		record, next, err := r.runAttempt(ctx, sliceLog, slice, sel, attempt, feedback, &touched)
		if err != nil {
			return domain.SliceSummary{}, err
		}
		result.Attempts = append(result.Attempts, record)
		if record.Passed() {
			result.Status = domain.SliceStatusPassed
			result.Passed = true
			break
		}
		feedback = next
	}

	result.TouchedPaths = touched.Sorted()
	log.Info().
		Bool("passed", result.Passed).
		Int("attempts", len(result.Attempts)).
		Msg("slice finished")
	return result, nil
}

// runAttempt performs one generate, apply, verify, review cycle. It returns
// the attempt record and, when the attempt failed, the next attempt's feedback.
func (r *run) runAttempt(
	ctx context.Context,
	sliceLog *runlog.Logger,
	slice domain.SlicePlan,
	sel domain.FileSelection,
	attempt int,
	feedback string,
	touched *domain.PathSet,
) (domain.AttemptRecord, string, error) {
	log := zerolog.Ctx(ctx).With().Int("attempt", attempt).Logger()
	ctx = log.WithContext(ctx)

	attemptLog, err := sliceLog.Sub(fmt.Sprintf("02-attempt-%d", attempt))
	if err != nil {
		return domain.AttemptRecord{}, "", err
	}

	log.Debug().Str("phase", string(domain.PhaseGenerate)).Msg("requesting changes")
	fileContext := workspace.LoadFileContext(r.workDir, sel.FilesToRead)
	cs, err := r.roles.Implement(ctx, attemptLog, slice, sel, fileContext, feedback)
	if err != nil {
		return domain.AttemptRecord{}, "", err
	}

	log.Debug().Str("phase", string(domain.PhaseApply)).Int("changes", len(cs.Changes)).Msg("applying changes")
	changed, err := workspace.Apply(r.workDir, cs)
	if err != nil {
		return domain.AttemptRecord{}, "", errors.Wrapf(err, "slice %s attempt %d", slice.ID, attempt)
	}
	touched.Add(changed...)
	if err := r.refreshRepoFiles(ctx); err != nil {
		return domain.AttemptRecord{}, "", err
	}

	log.Debug().Str("phase", string(domain.PhaseVerify)).Msg("running checks")
	commands := validation.CombineCommands(r.spec.CheckCommands, slice.CheckCommands)
	checks, err := r.checks.RunAll(ctx, commands, r.workDir)
	if err != nil {
		return domain.AttemptRecord{}, "", err
	}
	for i, c := range checks {
		if err := attemptLog.WriteText(fmt.Sprintf("check-%02d.txt", i+1), validation.CheckLog(c)); err != nil {
			return domain.AttemptRecord{}, "", err
		}
	}

	log.Debug().Str("phase", string(domain.PhaseReview)).Msg("requesting review")
	paths := touched.Sorted()
	diff := workspace.CaptureDiff(ctx, r.repo, r.workDir, paths)
	review, err := r.roles.Review(ctx, attemptLog, slice, paths, diff.Text, checks)
	if err != nil {
		return domain.AttemptRecord{}, "", err
	}

	record := domain.AttemptRecord{
		Attempt:             attempt,
		ImplementerSummary:  cs.Summary,
		ChangedPaths:        nonNil(changed),
		ChecksPassed:        validation.AllPassed(checks),
		ReviewPassed:        review.Pass,
		ReviewParsed:        review.Parsed,
		ReviewIssues:        nonNil(review.Issues),
		ReviewRequiredFixes: nonNil(review.RequiredFixes),
		DiffStats:           diff.Stats,
	}
	if err := attemptLog.WriteJSON("attempt_summary.json", record); err != nil {
		return domain.AttemptRecord{}, "", err
	}
	log.Info().
		Bool("checks_passed", record.ChecksPassed).
		Bool("review_passed", record.ReviewPassed).
		Int("lines_added", record.DiffStats.LinesAdded).
		Int("lines_removed", record.DiffStats.LinesRemoved).
		Msg("attempt finished")

	if record.Passed() {
		return record, "", nil
	}

	next := FormatFeedback(checks, review)
	if err := attemptLog.WriteText("feedback_for_next_attempt.txt", next); err != nil {
		return domain.AttemptRecord{}, "", err
	}
	return record, next, nil
}

// refreshRepoFiles re-reads the tracked file list; it is never cached across mutations.
func (r *run) refreshRepoFiles(ctx context.Context) error {
	files, err := r.repo.TrackedFiles(ctx)
	if err != nil {
		return errors.Wrap(err, "list tracked files")
	}
	r.repoFiles = files
	return nil
}

// recordFatal saves the aborting error in the run directory. Failures here are
// only logged; the original error is what the caller reports.
func (r *run) recordFatal(ctx context.Context, cause error) {
	text := logging.FilterSensitiveValue(cause.Error()) + "\n"
	if err := r.log.WriteText(fatalErrorFile, text); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record fatal error")
	}
}

// close releases the working directory lock.
func (r *run) close(ctx context.Context) {
	if err := r.lock.Release(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to release run lock")
	}
}

// SliceDirName names a slice's artifact directory: "02-slices/NN-<id>", with
// characters outside [A-Za-z0-9._-] in the id replaced.
func SliceDirName(index int, id string) string {
	safe := unsafeIDChars.ReplaceAllString(id, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = fmt.Sprintf("S%d", index)
	}
	return fmt.Sprintf("02-slices/%02d-%s", index, safe)
}
