package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/slicer/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitSuccess},
		{name: "run failed", err: fmt.Errorf("%w: S2", errors.ErrRunFailed), expected: ExitRunFailed},
		{name: "fatal wrapper", err: errors.NewExitCode2Error(errors.ErrBackend), expected: ExitFatal},
		{name: "spec validation", err: errors.ErrSpecValidation, expected: ExitFatal},
		{name: "flag error", err: stderrors.New("unknown flag: --nope"), expected: ExitFatal},
		{name: "interrupted", err: errors.NewExitCode2Error(errors.ErrInterrupted), expected: ExitFatal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, OutputText, flags.Output)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)
}

func TestGlobalFlags_Shorthands(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags([]string{"-o", "json", "-v"}))

	assert.Equal(t, OutputJSON, flags.Output)
	assert.True(t, flags.Verbose)
}

func TestBindGlobalFlags_EnvironmentOverride(t *testing.T) {
	t.Setenv("SLICER_VERBOSE", "true")

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))

	assert.True(t, v.GetBool("verbose"))
	assert.Equal(t, OutputText, v.GetString("output"))
}
