package domain

// CheckResult is the outcome of one check command in one attempt.
type CheckResult struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`

	// TimedOut is set when the command was killed for exceeding its timeout.
	TimedOut bool `json:"timed_out,omitempty"`
}

// Passed reports whether the command exited with status zero.
func (r CheckResult) Passed() bool {
	return r.ExitCode == 0
}

// ReviewResult is the reviewer's verdict for one attempt.
type ReviewResult struct {
	Pass          bool     `json:"pass"`
	Issues        []string `json:"issues"`
	RequiredFixes []string `json:"required_fixes"`

	// Parsed is false when the reviewer output held no usable JSON and the
	// verdict fell back to the check results.
	Parsed bool `json:"parsed"`

	// Raw is the unmodified reviewer output, kept for audit.
	Raw string `json:"-"`
}
