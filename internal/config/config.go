// Package config loads the run specification and the backend environment.
//
// A Spec is read once from a JSON (or YAML) file, normalized, validated
// against its bounds, and never mutated afterwards. Backend credentials and
// executable settings come from the environment, never from the spec file.
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/pathutil, but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Spec is the immutable run configuration.
// The json tags are both the file format and the names used in validation errors.
type Spec struct {
	// Goal is the high-level change the run should accomplish. Required.
	Goal string `json:"goal" validate:"required"`

	// Constraints are rules every slice must respect.
	Constraints []string `json:"constraints"`

	// AcceptanceCriteria apply to the run as a whole.
	AcceptanceCriteria []string `json:"acceptance_criteria"`

	// CheckCommands run after every attempt, after the slice's own commands.
	CheckCommands []string `json:"check_commands"`

	// ModelBackend is auto, http or sandboxed-cli.
	// Default: auto
	ModelBackend string `json:"model_backend" validate:"oneof=auto http sandboxed-cli"`

	// Model is the model identifier passed to the backend.
	// Default: gpt-4.1
	Model string `json:"model" validate:"required"`

	// APIBaseURL is the OpenAI-compatible endpoint for the http backend.
	APIBaseURL string `json:"api_base_url" validate:"required,url"`

	// MaxSlices caps the number of slices kept from the plan.
	MaxSlices int `json:"max_slices" validate:"min=1,max=20"`

	// MaxAttemptsPerSlice caps generate/apply/verify/review cycles per slice.
	MaxAttemptsPerSlice int `json:"max_attempts_per_slice" validate:"min=1,max=10"`

	// MaxFilesPerSlice caps the files read into the implementer prompt.
	MaxFilesPerSlice int `json:"max_files_per_slice" validate:"min=1,max=20"`

	// CommandTimeoutSeconds bounds each check command.
	CommandTimeoutSeconds int `json:"command_timeout_seconds" validate:"min=60,max=10000"`

	// WorkingDirectory is the repository root the run mutates, resolved to an absolute path.
	WorkingDirectory string `json:"working_directory" validate:"required"`

	// ContextFiles are repository-relative files always shown to the planner and implementer.
	ContextFiles []string `json:"context_files" validate:"dive,relpath"`

	PlannerNotes     string `json:"planner_notes"`
	ImplementerNotes string `json:"implementer_notes"`
	ReviewerNotes    string `json:"reviewer_notes"`
}

// CommandTimeout returns the per-command timeout as a duration.
func (s *Spec) CommandTimeout() time.Duration {
	return time.Duration(s.CommandTimeoutSeconds) * time.Second
}
