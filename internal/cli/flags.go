package cli

import (
	stderrors "errors"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/slicer/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates every slice passed (or the plan was printed).
	ExitSuccess = 0
	// ExitRunFailed indicates the run completed and was logged but a slice failed.
	ExitRunFailed = 1
	// ExitFatal indicates an error aborted the command before it completed.
	ExitFatal = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper so they can also be set from
// the environment with the SLICER_ prefix (SLICER_OUTPUT, SLICER_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Root().PersistentFlags() finds the flags even from a subcommand.
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix("SLICER")
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError returns the process exit code for err.
//
// A failed slice is an ordinary outcome and exits 1. Everything else that
// stops a command, including bad flags and an unreadable spec, exits 2.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err):
		return ExitFatal
	case stderrors.Is(err, errors.ErrRunFailed):
		return ExitRunFailed
	default:
		return ExitFatal
	}
}
