//go:build unix

package validation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/validation"
)

func TestDefaultCommandRunner_Run(t *testing.T) {
	runner := &validation.DefaultCommandRunner{}

	t.Run("success", func(t *testing.T) {
		stdout, stderr, code, err := runner.Run(context.Background(), t.TempDir(), "echo hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", stdout)
		assert.Empty(t, stderr)
		assert.Equal(t, 0, code)
	})

	t.Run("non-zero exit with stderr", func(t *testing.T) {
		_, stderr, code, err := runner.Run(context.Background(), t.TempDir(), "echo oops >&2; exit 3")
		require.Error(t, err)
		assert.Equal(t, "oops\n", stderr)
		assert.Equal(t, 3, code)
	})

	t.Run("runs in work dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o600))
		stdout, _, code, err := runner.Run(context.Background(), dir, "ls")
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "marker.txt")
	})
}

func TestExecutor_RealTimeoutKillsProcessGroup(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a shell")
	}
	executor := validation.NewExecutor(200 * time.Millisecond)

	start := time.Now()
	result := executor.RunOne(context.Background(), "sleep 30 & sleep 30", t.TempDir())

	assert.True(t, result.TimedOut)
	assert.Equal(t, 124, result.ExitCode)
	assert.Less(t, time.Since(start), 10*time.Second)
}
