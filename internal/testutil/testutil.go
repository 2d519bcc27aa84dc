// Package testutil provides helpers shared by slicer's tests: throwaway git
// repositories, file fixtures and mock errors.
//
// It should only be imported by test files (*_test.go).
package testutil

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ErrMockNetwork simulates a transport failure.
var ErrMockNetwork = errors.New("connection refused")

// InitRepo creates an empty git repository in a temp dir with a commit
// identity configured and signing disabled.
func InitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	Git(t, dir, "init")
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test User")
	Git(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

// NewRepo creates a git repository whose only commit adds README.md.
func NewRepo(t *testing.T) string {
	t.Helper()
	dir := InitRepo(t)
	WriteFile(t, dir, "README.md", "# demo\n")
	CommitAll(t, dir, "initial")
	return dir
}

// Git runs git in dir, failing the test on error, and returns trimmed output.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...) // #nosec G204 -- test helper
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// CommitAll stages everything in dir and commits it.
func CommitAll(t *testing.T, dir, message string) {
	t.Helper()
	Git(t, dir, "add", "-A")
	Git(t, dir, "commit", "-m", message)
}

// WriteFile writes content to the slash-separated rel under dir, creating parents.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	return string(data)
}
