// Package errors provides centralized error handling for slicer.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// The sentinels follow the run taxonomy: spec validation, backend, parse,
// unsafe path and apply errors are fatal to a run; a failed or timed-out check
// is recorded as data and never unwinds.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrSpecValidation indicates a malformed or out-of-bounds spec field.
	// It aborts the run before any backend call.
	ErrSpecValidation = errors.New("invalid spec")

	// ErrSpecNotFound indicates the spec file does not exist.
	ErrSpecNotFound = errors.New("spec file not found")

	// ErrSpecInvalidJSON indicates the spec file could not be parsed.
	ErrSpecInvalidJSON = errors.New("spec file is not valid JSON")

	// ErrBackend indicates a transport failure, a non-success status, or an
	// unexpected response shape from the model backend.
	ErrBackend = errors.New("model backend failed")

	// ErrBackendUnavailable indicates no backend could be constructed from the
	// spec and environment.
	ErrBackendUnavailable = errors.New("model backend unavailable")

	// ErrCodexInvocation indicates the sandboxed CLI backend failed to execute
	// or produced no output.
	ErrCodexInvocation = errors.New("codex invocation failed")

	// ErrParse indicates no JSON object could be recovered from model output.
	ErrParse = errors.New("could not parse JSON object from model output")

	// ErrEmptyResponse indicates the model returned empty text where JSON was required.
	ErrEmptyResponse = errors.New("model response was empty")

	// ErrInvalidResponse indicates well-formed JSON that does not carry the
	// fields a role requires (for example a plan without slices).
	ErrInvalidResponse = errors.New("model response has unexpected shape")

	// ErrUnsafePath indicates a model-proposed path that is absolute, escapes the
	// working directory, or is empty.
	ErrUnsafePath = errors.New("unsafe path from model output")

	// ErrApply indicates a malformed change record, an upsert without content,
	// or an attempt to delete a directory.
	ErrApply = errors.New("cannot apply change set")

	// ErrCommandTimeout indicates a check command exceeded its timeout.
	ErrCommandTimeout = errors.New("command timeout exceeded")

	// ErrWorkingDir indicates the configured working directory is missing or not a directory.
	ErrWorkingDir = errors.New("invalid working directory")

	// ErrGitOperation indicates that a git command failed.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrRunLocked indicates another slicer process holds the working directory's run lock.
	ErrRunLocked = errors.New("another run is using this working directory")

	// ErrArtifactWrite indicates a run artifact could not be persisted.
	ErrArtifactWrite = errors.New("failed to write run artifact")

	// ErrPathTraversal indicates an attempt to use path traversal in an artifact name.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrRunFailed indicates a run completed and was logged, but at least one
	// slice did not pass. Commands exit with code 1 for this error.
	ErrRunFailed = errors.New("one or more slices failed")

	// ErrInterrupted indicates the user stopped the command with SIGINT or SIGTERM.
	ErrInterrupted = errors.New("interrupted")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
// Fatal orchestrator errors are wrapped with it at the command boundary.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
