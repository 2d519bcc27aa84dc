// Package constants provides centralized constant values used throughout slicer.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Spec defaults applied when a field is absent from the spec file.
const (
	// DefaultModel is the model identifier passed to the backend when the spec omits one.
	DefaultModel = "gpt-4.1"

	// DefaultAPIBaseURL is the OpenAI-compatible endpoint used by the HTTP backend.
	DefaultAPIBaseURL = "https://api.openai.com/v1"

	// DefaultBackend lets the engine pick the HTTP backend when a key exists,
	// otherwise the sandboxed CLI backend.
	DefaultBackend = "auto"

	// DefaultMaxSlices is the default upper bound on planned slices.
	DefaultMaxSlices = 6

	// DefaultMaxAttemptsPerSlice is the default attempt budget for one slice.
	DefaultMaxAttemptsPerSlice = 3

	// DefaultMaxFilesPerSlice is the default cap on files read for one slice.
	DefaultMaxFilesPerSlice = 8

	// DefaultCommandTimeoutSeconds is the default timeout for one check command.
	DefaultCommandTimeoutSeconds = 1200

	// DefaultWorkingDirectory is resolved against the process working directory.
	DefaultWorkingDirectory = "."
)

// Spec bounds. Values outside these ranges are rejected at load time.
const (
	MinSlices                = 1
	MaxSlices                = 20
	MinAttemptsPerSlice      = 1
	MaxAttemptsPerSlice      = 10
	MinFilesPerSlice         = 1
	MaxFilesPerSlice         = 20
	MinCommandTimeoutSeconds = 60
	MaxCommandTimeoutSeconds = 10000
)

// Content ceilings used when building prompts and diffs.
const (
	// MaxFileChars caps a single file's content in prompts and untracked diff blocks.
	MaxFileChars = 25_000

	// MaxRepoFiles caps the tracked-file listing shown to the backend.
	MaxRepoFiles = 600

	// MaxDiffChars caps the combined diff shown to the reviewer.
	MaxDiffChars = 80_000

	// FeedbackTailChars is how much of a failing check's output is kept in feedback.
	FeedbackTailChars = 4000

	// TruncatedMarker is appended to content cut at MaxFileChars.
	TruncatedMarker = "[TRUNCATED]"

	// DiffTruncatedMarker is appended to a diff cut at MaxDiffChars.
	DiffTruncatedMarker = "[DIFF TRUNCATED]"
)

// Process and timeout configuration.
const (
	// TimeoutExitCode is the synthetic exit code recorded for a timed-out check.
	TimeoutExitCode = 124

	// HTTPBackendTimeout bounds a single HTTP completion call.
	HTTPBackendTimeout = 180 * time.Second

	// CodexBackendTimeout bounds a single sandboxed CLI completion call.
	CodexBackendTimeout = 900 * time.Second

	// GitQueryTimeout bounds each git query made by the repository introspector.
	GitQueryTimeout = 30 * time.Second

	// KillGracePeriod is how long a killed check command may keep its pipes open.
	KillGracePeriod = 5 * time.Second
)

// Backend selection values.
const (
	BackendAuto         = "auto"
	BackendHTTP         = "http"
	BackendSandboxedCLI = "sandboxed-cli"

	// BackendAliasOpenAI and BackendAliasCodexCLI are accepted for older spec files.
	BackendAliasOpenAI   = "openai"
	BackendAliasCodexCLI = "codex-cli"

	// DefaultCodexBin is the executable used by the sandboxed CLI backend.
	DefaultCodexBin = "codex"

	// DefaultReasoningEffort is used when CODEX_REASONING_EFFORT is unset or invalid.
	DefaultReasoningEffort = "low"
)

// Directory names and paths used by slicer for organizing data.
const (
	// SlicerHome is the hidden directory name where slicer keeps its own data.
	SlicerHome = ".slicer"

	// RunsDir is the run artifact root, relative to the working directory.
	RunsDir = ".slicer/runs"

	// RunLockFile is held by a run for its whole duration, relative to the working directory.
	RunLockFile = ".slicer/run.lock"

	// RunDirTimeLayout formats the timestamped run directory name.
	RunDirTimeLayout = "20060102-150405"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the rotating CLI log file name.
	CLILogFileName = "slicer.log"
)

// Log rotation settings for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 14
	LogCompress   = true
)

// Generation settings per role.
const (
	DefaultTemperature = 0.1

	PlanMaxTokens      = 4500
	SelectMaxTokens    = 1200
	ImplementMaxTokens = 7000
	ReviewMaxTokens    = 2200
)
