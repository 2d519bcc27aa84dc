package prompts

import "github.com/mrz1836/slicer/internal/domain"

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers. Every role has a system and a user prompt.
const (
	PlanSystem PromptID = "plan/system"
	PlanUser   PromptID = "plan/user"

	SelectSystem PromptID = "select/system"
	SelectUser   PromptID = "select/user"

	ImplementSystem PromptID = "implement/system"
	ImplementUser   PromptID = "implement/user"

	ReviewSystem PromptID = "review/system"
	ReviewUser   PromptID = "review/user"
)

// PlanData is the input for the planner prompt.
type PlanData struct {
	Goal               string
	Constraints        []string
	AcceptanceCriteria []string
	CheckCommands      []string
	// RepoFiles is the (capped) tracked-file listing.
	RepoFiles []string
	// ContextText is the rendered context files, empty when none were configured.
	ContextText  string
	PlannerNotes string
	MaxSlices    int
}

// SelectData is the input for the file selector prompt.
type SelectData struct {
	Slice     domain.SlicePlan
	RepoFiles []string
	MaxFiles  int
}

// ImplementData is the input for the implementer prompt.
type ImplementData struct {
	Goal               string
	Constraints        []string
	AcceptanceCriteria []string
	Slice              domain.SlicePlan
	FilesToRead        []string
	FilesToCreate      []string
	// FileContext is the rendered content of FilesToRead.
	FileContext string
	// Feedback is the previous attempt's feedback, empty on the first attempt.
	Feedback         string
	ImplementerNotes string
}

// ReviewData is the input for the reviewer prompt.
type ReviewData struct {
	Goal               string
	AcceptanceCriteria []string
	Slice              domain.SlicePlan
	TouchedPaths       []string
	// CheckSummary is the [PASS]/[FAIL] summary, empty when no checks ran.
	CheckSummary  string
	Diff          string
	ReviewerNotes string
}
