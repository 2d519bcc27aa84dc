package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice keeps lookup order deterministic; more specific sentinels come first
// because wrapped errors may match several entries.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrSpecNotFound,
		info: ErrorInfo{
			Message: "The spec file could not be found.",
			Action:  "Check the --spec path.",
		},
	},
	{
		err: ErrSpecInvalidJSON,
		info: ErrorInfo{
			Message: "The spec file is not valid JSON.",
			Action:  "Fix the syntax error reported above and retry.",
		},
	},
	{
		err: ErrSpecValidation,
		info: ErrorInfo{
			Message: "The spec file failed validation.",
			Action:  "Correct the field named in the error; numeric fields must stay inside their documented bounds.",
		},
	},
	{
		err: ErrBackendUnavailable,
		info: ErrorInfo{
			Message: "No model backend is available.",
			Action:  "Set OPENAI_API_KEY for the http backend, or install the codex CLI for sandboxed-cli.",
		},
	},
	{
		err: ErrCodexInvocation,
		info: ErrorInfo{
			Message: "The codex CLI failed.",
			Action:  "Check that CODEX_CLI_BIN points to a working codex install and that you are logged in.",
		},
	},
	{
		err: ErrBackend,
		info: ErrorInfo{
			Message: "The model backend call failed.",
			Action:  "Check network access, API key, and api_base_url, then retry.",
		},
	},
	{
		err: ErrEmptyResponse,
		info: ErrorInfo{
			Message: "The model returned an empty response.",
			Action:  "Retry the run; consider a different model.",
		},
	},
	{
		err: ErrParse,
		info: ErrorInfo{
			Message: "The model response did not contain a JSON object.",
			Action:  "Inspect the raw_response artifact in the run directory.",
		},
	},
	{
		err: ErrInvalidResponse,
		info: ErrorInfo{
			Message: "The model response was missing required fields.",
			Action:  "Inspect the parsed artifact in the run directory.",
		},
	},
	{
		err: ErrUnsafePath,
		info: ErrorInfo{
			Message: "The model proposed a path outside the working directory.",
			Action:  "No files from the rejected change set were written. Retry the run.",
		},
	},
	{
		err: ErrApply,
		info: ErrorInfo{
			Message: "The proposed change set could not be applied.",
			Action:  "Inspect parsed_implementer_response.json in the run directory.",
		},
	},
	{
		err: ErrWorkingDir,
		info: ErrorInfo{
			Message: "The working directory does not exist.",
			Action:  "Fix working_directory in the spec.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "The working directory is not a git repository.",
			Action:  "Run inside a git checkout; tracked files are read from git.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "A git command failed.",
			Action:  "Check the repository state with 'git status'.",
		},
	},
	{
		err: ErrRunLocked,
		info: ErrorInfo{
			Message: "Another slicer run is using this working directory.",
			Action:  "Wait for it to finish, or point working_directory at a different checkout.",
		},
	},
	{
		err: ErrArtifactWrite,
		info: ErrorInfo{
			Message: "A run artifact could not be written.",
			Action:  "Check disk space and permissions on the working directory.",
		},
	},
	{
		err: ErrRunFailed,
		info: ErrorInfo{
			Message: "The run finished but one or more slices failed.",
			Action:  "Review the attempt feedback in the run directory.",
		},
	},
	{
		err: ErrInterrupted,
		info: ErrorInfo{
			Message: "The command was interrupted.",
			Action:  "Artifacts written so far remain in the run directory.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error, walking the chain with errors.Is.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty for errors without a known remedy.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
