package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/slicer/internal/backend"
	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/extract"
	"github.com/mrz1836/slicer/internal/pathutil"
	"github.com/mrz1836/slicer/internal/prompts"
	"github.com/mrz1836/slicer/internal/runlog"
	"github.com/mrz1836/slicer/internal/validation"
)

// Role names, used in backend logs.
const (
	RolePlan      = "plan"
	RoleSelect    = "select"
	RoleImplement = "implement"
	RoleReview    = "review"
)

// unparsableReviewIssue is recorded when the reviewer reply holds no JSON object.
const unparsableReviewIssue = "Reviewer output could not be parsed as JSON."

// Roles performs the four model-backed steps of a run. Each step is one
// backend call; every bound on the reply is enforced here, not trusted.
type Roles struct {
	Backend backend.Backend
	Spec    *config.Spec
}

// complete renders a role's prompts and calls the backend.
func (r Roles) complete(ctx context.Context, role string, system, user prompts.PromptID, data any, maxTokens int) (string, error) {
	sys, err := prompts.System(system)
	if err != nil {
		return "", err
	}
	usr, err := prompts.Render(user, data)
	if err != nil {
		return "", err
	}
	return r.Backend.Complete(ctx, &backend.Request{
		Role:         role,
		SystemPrompt: sys,
		UserPrompt:   usr,
		Temperature:  constants.DefaultTemperature,
		MaxTokens:    maxTokens,
	})
}

// Plan asks for the ordered slice list. The raw reply and the parsed object
// are written to log as 01-plan/raw_response.txt and 01-plan/parsed_plan.json.
func (r Roles) Plan(ctx context.Context, log *runlog.Logger, repoFiles []string, contextText string) ([]domain.SlicePlan, error) {
	raw, err := r.complete(ctx, RolePlan, prompts.PlanSystem, prompts.PlanUser, prompts.PlanData{
		Goal:               r.Spec.Goal,
		Constraints:        r.Spec.Constraints,
		AcceptanceCriteria: r.Spec.AcceptanceCriteria,
		CheckCommands:      r.Spec.CheckCommands,
		RepoFiles:          repoFiles,
		ContextText:        contextText,
		PlannerNotes:       r.Spec.PlannerNotes,
		MaxSlices:          r.Spec.MaxSlices,
	}, constants.PlanMaxTokens)
	if err != nil {
		return nil, errors.Wrap(err, "planner")
	}
	if err := log.WriteText("01-plan/raw_response.txt", raw); err != nil {
		return nil, err
	}

	payload, err := extract.Object(raw)
	if err != nil {
		return nil, errors.Wrap(err, "planner")
	}
	if err := log.WriteJSON("01-plan/parsed_plan.json", payload); err != nil {
		return nil, err
	}

	return ParsePlan(payload, r.Spec.MaxSlices)
}

// ParsePlan converts the planner payload into slices, keeping at most maxSlices.
func ParsePlan(payload map[string]any, maxSlices int) ([]domain.SlicePlan, error) {
	items, ok := payload["slices"].([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: planner returned no slices", errors.ErrInvalidResponse)
	}

	plans := make([]domain.SlicePlan, 0, len(items))
	for i, item := range items {
		n := i + 1
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: planner slice #%d is not an object", errors.ErrInvalidResponse, n)
		}
		id := extract.String(obj["id"])
		if id == "" {
			id = fmt.Sprintf("S%d", n)
		}
		title := extract.String(obj["title"])
		objective := extract.String(obj["objective"])
		if title == "" || objective == "" {
			return nil, fmt.Errorf("%w: planner slice #%d missing title or objective", errors.ErrInvalidResponse, n)
		}
		plans = append(plans, domain.SlicePlan{
			ID:            id,
			Title:         title,
			Objective:     objective,
			Acceptance:    nonNil(extract.StringList(obj["acceptance"])),
			CheckCommands: nonNil(extract.StringList(obj["check_commands"])),
			FilesHint:     nonNil(extract.StringList(obj["files_hint"])),
		})
	}

	if len(plans) > maxSlices {
		plans = plans[:maxSlices]
	}
	return plans, nil
}

// SelectFiles asks which files the implementer should see for a slice.
// log is the slice's 01-file-selection directory.
func (r Roles) SelectFiles(ctx context.Context, log *runlog.Logger, slice domain.SlicePlan, repoFiles []string) (domain.FileSelection, error) {
	raw, err := r.complete(ctx, RoleSelect, prompts.SelectSystem, prompts.SelectUser, prompts.SelectData{
		Slice:     slice,
		RepoFiles: repoFiles,
		MaxFiles:  r.Spec.MaxFilesPerSlice,
	}, constants.SelectMaxTokens)
	if err != nil {
		return domain.FileSelection{}, errors.Wrapf(err, "file selector %s", slice.ID)
	}
	if err := log.WriteText("raw_response.txt", raw); err != nil {
		return domain.FileSelection{}, err
	}

	payload, err := extract.Object(raw)
	if err != nil {
		return domain.FileSelection{}, errors.Wrapf(err, "file selector %s", slice.ID)
	}
	if err := log.WriteJSON("parsed_selection.json", payload); err != nil {
		return domain.FileSelection{}, err
	}

	return ParseSelection(payload, slice, repoFiles, r.Spec.MaxFilesPerSlice), nil
}

// ParseSelection filters the selector payload. files_to_read keeps only safe
// paths present in repoFiles, then gains any planner hint that exists and was
// skipped, then is cut to maxFiles. files_to_create keeps safe paths, deduplicated.
func ParseSelection(payload map[string]any, slice domain.SlicePlan, repoFiles []string, maxFiles int) domain.FileSelection {
	known := make(map[string]struct{}, len(repoFiles))
	for _, f := range repoFiles {
		known[f] = struct{}{}
	}
	inRepo := func(p string) bool {
		_, ok := known[p]
		return ok
	}

	toRead := make([]string, 0, maxFiles)
	for _, p := range pathutil.FilterSafe(extract.StringList(payload["files_to_read"])) {
		if inRepo(p) {
			toRead = append(toRead, p)
		}
	}
	for _, hint := range pathutil.FilterSafe(slice.FilesHint) {
		if inRepo(hint) && !slices.Contains(toRead, hint) {
			toRead = append(toRead, hint)
		}
	}
	if len(toRead) > maxFiles {
		toRead = toRead[:maxFiles]
	}

	return domain.FileSelection{
		FilesToRead:   toRead,
		FilesToCreate: pathutil.FilterSafe(extract.StringList(payload["files_to_create"])),
	}
}

// Implement asks for the change set of one attempt. log is the attempt directory.
// Any failure is fatal to the run: the reply contract is mandatory.
func (r Roles) Implement(ctx context.Context, log *runlog.Logger, slice domain.SlicePlan, sel domain.FileSelection, fileContext, feedback string) (domain.ChangeSet, error) {
	raw, err := r.complete(ctx, RoleImplement, prompts.ImplementSystem, prompts.ImplementUser, prompts.ImplementData{
		Goal:               r.Spec.Goal,
		Constraints:        r.Spec.Constraints,
		AcceptanceCriteria: r.Spec.AcceptanceCriteria,
		Slice:              slice,
		FilesToRead:        sel.FilesToRead,
		FilesToCreate:      sel.FilesToCreate,
		FileContext:        fileContext,
		Feedback:           feedback,
		ImplementerNotes:   r.Spec.ImplementerNotes,
	}, constants.ImplementMaxTokens)
	if err != nil {
		return domain.ChangeSet{}, errors.Wrapf(err, "implementer %s", slice.ID)
	}
	if err := log.WriteText("raw_implementer_response.txt", raw); err != nil {
		return domain.ChangeSet{}, err
	}

	payload, err := extract.Object(raw)
	if err != nil {
		return domain.ChangeSet{}, errors.Wrapf(err, "implementer %s", slice.ID)
	}
	if err := log.WriteJSON("parsed_implementer_response.json", payload); err != nil {
		return domain.ChangeSet{}, err
	}

	cs, err := ParseChangeSet(payload)
	if err != nil {
		return domain.ChangeSet{}, errors.Wrapf(err, "implementer %s", slice.ID)
	}
	return cs, nil
}

// ParseChangeSet converts the implementer payload into a ChangeSet.
// A missing changes array, a record that is not an object, a record without
// string path and action, and an upsert without string content all fail with ErrApply.
// Path safety and action names are checked by workspace.Apply.
func ParseChangeSet(payload map[string]any) (domain.ChangeSet, error) {
	items, ok := payload["changes"].([]any)
	if !ok {
		return domain.ChangeSet{}, fmt.Errorf("%w: implementer response missing 'changes' array", errors.ErrApply)
	}

	cs := domain.ChangeSet{
		Summary: extract.String(payload["summary"]),
		Changes: make([]domain.Change, 0, len(items)),
	}
	for i, item := range items {
		n := i + 1
		obj, ok := item.(map[string]any)
		if !ok {
			return domain.ChangeSet{}, fmt.Errorf("%w: change %d is not an object", errors.ErrApply, n)
		}
		path, pathOK := obj["path"].(string)
		action, actionOK := obj["action"].(string)
		if !pathOK || !actionOK {
			return domain.ChangeSet{}, fmt.Errorf("%w: change %d needs string path and action", errors.ErrApply, n)
		}
		change := domain.Change{
			Path:   path,
			Action: domain.ChangeAction(strings.ToLower(strings.TrimSpace(action))),
		}
		if change.Action == domain.ActionUpsert {
			content, ok := obj["content"].(string)
			if !ok {
				return domain.ChangeSet{}, fmt.Errorf("%w: missing content for upsert action on %s", errors.ErrApply, path)
			}
			change.Content = content
		}
		cs.Changes = append(cs.Changes, change)
	}
	return cs, nil
}

// Review asks the reviewer to judge an attempt. log is the attempt directory.
// Only a backend failure is returned as an error; an unparsable reply
// degrades to a verdict equal to the check outcome.
func (r Roles) Review(ctx context.Context, log *runlog.Logger, slice domain.SlicePlan, touched []string, diffText string, checks []domain.CheckResult) (domain.ReviewResult, error) {
	raw, err := r.complete(ctx, RoleReview, prompts.ReviewSystem, prompts.ReviewUser, prompts.ReviewData{
		Goal:               r.Spec.Goal,
		AcceptanceCriteria: r.Spec.AcceptanceCriteria,
		Slice:              slice,
		TouchedPaths:       touched,
		CheckSummary:       validation.Summarize(checks),
		Diff:               diffText,
		ReviewerNotes:      r.Spec.ReviewerNotes,
	}, constants.ReviewMaxTokens)
	if err != nil {
		return domain.ReviewResult{}, errors.Wrapf(err, "reviewer %s", slice.ID)
	}
	if err := log.WriteText("raw_reviewer_response.txt", raw); err != nil {
		return domain.ReviewResult{}, err
	}

	result := ParseReview(raw, checks)
	if !result.Parsed {
		zerolog.Ctx(ctx).Warn().
			Str("slice_id", slice.ID).
			Bool("checks_passed", result.Pass).
			Msg("reviewer output unparsable, falling back to check results")
	}
	if err := log.WriteJSON("parsed_reviewer_response.json", result); err != nil {
		return domain.ReviewResult{}, err
	}
	return result, nil
}

// ParseReview turns the reviewer reply into a verdict. When raw holds no JSON
// object the verdict is "pass iff every check passed".
func ParseReview(raw string, checks []domain.CheckResult) domain.ReviewResult {
	payload, err := extract.Object(raw)
	if err != nil {
		return domain.ReviewResult{
			Pass:          validation.AllPassed(checks),
			Issues:        []string{unparsableReviewIssue},
			RequiredFixes: []string{},
			Parsed:        false,
			Raw:           raw,
		}
	}
	return domain.ReviewResult{
		Pass:          extract.Bool(payload["pass"]),
		Issues:        nonNil(extract.StringList(payload["issues"])),
		RequiredFixes: nonNil(extract.StringList(payload["required_fixes"])),
		Parsed:        true,
		Raw:           raw,
	}
}

// FormatFeedback builds the next attempt's feedback from failing checks and
// reviewer findings. It is empty when there is nothing to report.
func FormatFeedback(checks []domain.CheckResult, review domain.ReviewResult) string {
	var parts []string
	if len(checks) > 0 && !validation.AllPassed(checks) {
		parts = append(parts, "Test/check failures:", validation.Summarize(checks))
	}
	if !review.Pass {
		parts = append(parts, "Reviewer findings:")
		for _, issue := range review.Issues {
			parts = append(parts, "- "+issue)
		}
		if len(review.RequiredFixes) > 0 {
			parts = append(parts, "Required fixes:")
			for _, fix := range review.RequiredFixes {
				parts = append(parts, "- "+fix)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// nonNil keeps empty lists rendering as [] in artifacts.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
