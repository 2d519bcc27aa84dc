package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"}, testServices(newRoleBackend(reviewPass)))
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "slicer")
	assert.Contains(t, output, "plan")
	assert.Contains(t, output, "run")
	assert.Contains(t, output, "--output")
	assert.Contains(t, output, "--verbose")
	assert.Contains(t, output, "--quiet")
}

func TestRootCmd_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		info           BuildInfo
		expectContains []string
	}{
		{
			name:           "full version info",
			info:           BuildInfo{Version: "1.0.0", Commit: "abc1234", Date: "2026-01-01"},
			expectContains: []string{"1.0.0", "abc1234", "2026-01-01"},
		},
		{
			name:           "default dev version",
			info:           BuildInfo{},
			expectContains: []string{"dev", "none", "unknown"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRootCmd(&GlobalFlags{}, tc.info, testServices(newRoleBackend(reviewPass)))
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"--version"})

			require.NoError(t, cmd.Execute())
			for _, expected := range tc.expectContains {
				assert.Contains(t, buf.String(), expected)
			}
		})
	}
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	b := newRoleBackend(reviewPass)
	res := runCLI(t, testServices(b), "plan", "--spec", "x.json", "--output", "yaml")

	require.Error(t, res.err)
	assert.Equal(t, ExitFatal, res.exitCode())
	assert.Contains(t, res.stderr, "error: invalid output format")
	assert.Contains(t, res.stderr, "hint: Use --output text or --output json.")
	assert.Zero(t, b.callCount())
}

func TestExecute_OutputFormatFromEnvironment(t *testing.T) {
	t.Setenv("SLICER_OUTPUT", "bogus")

	res := runCLI(t, testServices(newRoleBackend(reviewPass)), "plan", "--spec", "x.json")
	assert.Equal(t, ExitFatal, res.exitCode())
	assert.Contains(t, res.stderr, `"bogus" must be one of`)
}

func TestExecute_VerboseAndQuietAreExclusive(t *testing.T) {
	res := runCLI(t, testServices(newRoleBackend(reviewPass)), "run", "--spec", "x.json", "-v", "-q")

	require.Error(t, res.err)
	assert.Equal(t, ExitFatal, res.exitCode())
	assert.Contains(t, res.stderr, "if any flags in the group")
}

func TestExecute_MissingSpecFlag(t *testing.T) {
	for _, sub := range []string{"plan", "run"} {
		t.Run(sub, func(t *testing.T) {
			res := runCLI(t, testServices(newRoleBackend(reviewPass)), sub)

			require.Error(t, res.err)
			assert.Equal(t, ExitFatal, res.exitCode())
			assert.Contains(t, res.stderr, `required flag(s) "spec" not set`)
		})
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	res := runCLI(t, testServices(newRoleBackend(reviewPass)), "deploy")

	assert.Equal(t, ExitFatal, res.exitCode())
	assert.Contains(t, res.stderr, "unknown command")
}
