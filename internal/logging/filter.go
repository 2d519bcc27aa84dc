// Package logging keeps credentials out of slicer's logs and artifacts.
//
// The CLI wraps its log file in a FilteringWriter, backend errors pass
// through FilterSensitiveValue before they are logged or saved, and the
// SensitiveDataHook flags console events whose message looked sensitive.
package logging

import (
	"io"
	"regexp"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns match the credential formats a run can plausibly print:
// OpenAI-style keys from the environment, and tokens echoed back in backend
// or check-command output.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// OpenAI project and legacy keys (sk-proj-..., sk-...)
	regexp.MustCompile(`sk-(?:proj-)?[a-zA-Z0-9_-]{20,}`),

	// GitHub tokens, often present in check output from CI tooling
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// key=value and key: value forms
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	// Bearer tokens in echoed request headers
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_.-]{20,}`),

	// Authorization headers with tokens
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9_-]{20,}["']?`),

	// Generic secrets
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// PEM private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// SensitiveDataHook is a zerolog hook that marks events whose message
// matches a sensitive pattern. zerolog hooks cannot rewrite a message, so
// redaction itself happens at the call site and in FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data patterns.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a FilteringWriter around w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It reports len(p) on success so callers never see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
