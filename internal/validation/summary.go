package validation

import (
	"fmt"
	"strings"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/domain"
	"github.com/mrz1836/slicer/internal/pathutil"
)

// CombineCommands returns the slice's commands followed by the global ones,
// trimmed, blanks dropped, duplicates collapsed to their first occurrence.
//
//	CombineCommands([]string{"a", "b"}, []string{"b", "c"}) // ["b", "c", "a"]
func CombineCommands(global, slice []string) []string {
	all := make([]string, 0, len(global)+len(slice))
	for _, group := range [][]string{slice, global} {
		for _, c := range group {
			if c = strings.TrimSpace(c); c != "" {
				all = append(all, c)
			}
		}
	}
	return pathutil.Dedupe(all)
}

// AllPassed reports whether every result passed. No results counts as passing.
func AllPassed(results []domain.CheckResult) bool {
	for _, r := range results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Summarize renders one [PASS]/[FAIL] line per command, with the tail of each
// failing command's output below its line. A timed-out command is marked on
// its [FAIL] line.
func Summarize(results []domain.CheckResult) string {
	lines := make([]string, 0, len(results)*3)
	for _, r := range results {
		line := "[PASS] " + r.Command
		switch {
		case r.TimedOut:
			line = "[FAIL] " + r.Command + " (timed out)"
		case !r.Passed():
			line = "[FAIL] " + r.Command
		}
		lines = append(lines, line)
		if !r.Passed() {
			lines = append(lines, Tail(r.Output, constants.FeedbackTailChars), "")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CheckLog renders the per-command artifact body.
func CheckLog(r domain.CheckResult) string {
	return fmt.Sprintf("$ %s\n\nexit_code=%d\n\n%s", r.Command, r.ExitCode, r.Output)
}

// Tail returns the last n characters of s.
func Tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
