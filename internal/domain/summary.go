package domain

import "time"

// SliceStatus is the terminal state of a slice.
type SliceStatus string

const (
	// SliceStatusPassed means some attempt had passing checks and a passing review.
	SliceStatusPassed SliceStatus = "passed"

	// SliceStatusFailed means the attempt budget ran out without a passing attempt.
	SliceStatusFailed SliceStatus = "failed_after_attempts"
)

// Phase names a step inside one attempt, used in logs.
type Phase string

// Attempt phases in execution order.
const (
	PhaseGenerate Phase = "generate"
	PhaseApply    Phase = "apply"
	PhaseVerify   Phase = "verify"
	PhaseReview   Phase = "review"
)

// AttemptRecord is what one generate/apply/verify/review cycle left behind.
type AttemptRecord struct {
	Attempt             int       `json:"attempt"`
	ImplementerSummary  string    `json:"implementer_summary,omitempty"`
	ChangedPaths        []string  `json:"changed_paths"`
	ChecksPassed        bool      `json:"checks_passed"`
	ReviewPassed        bool      `json:"review_passed"`
	ReviewParsed        bool      `json:"review_parsed"`
	ReviewIssues        []string  `json:"review_issues"`
	ReviewRequiredFixes []string  `json:"review_required_fixes"`
	DiffStats           DiffStats `json:"diff_stats"`
}

// Passed reports whether this attempt satisfied the slice.
func (a AttemptRecord) Passed() bool {
	return a.ChecksPassed && a.ReviewPassed
}

// SliceSummary is the outcome of one slice.
type SliceSummary struct {
	Slice        SlicePlan       `json:"slice"`
	Status       SliceStatus     `json:"status"`
	Passed       bool            `json:"passed"`
	Attempts     []AttemptRecord `json:"attempts"`
	TouchedPaths []string        `json:"touched_paths"`
}

// RunSummary is the overall record of a run. It is rewritten after every
// slice so partial progress survives a crash.
type RunSummary struct {
	RunID               string         `json:"run_id"`
	StartedAt           time.Time      `json:"started_at"`
	EndedAt             *time.Time     `json:"ended_at,omitempty"`
	RunDir              string         `json:"run_dir"`
	Slices              []SliceSummary `json:"slices"`
	Failed              bool           `json:"failed"`
	StoppedAtSlice      string         `json:"stopped_at_slice,omitempty"`
	InitialChangedPaths []string       `json:"initial_changed_paths"`
	FinalChangedPaths   []string       `json:"final_changed_paths,omitempty"`
}

// FailedSlices returns the IDs of slices that did not pass.
func (s *RunSummary) FailedSlices() []string {
	var ids []string
	for _, sl := range s.Slices {
		if !sl.Passed {
			ids = append(ids, sl.Slice.ID)
		}
	}
	return ids
}
