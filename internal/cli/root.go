// Package cli provides the command-line interface for slicer.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/signal"
	"github.com/mrz1836/slicer/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// It is set during PersistentPreRunE and read via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger.
//
// It MUST only be called after the root command's PersistentPreRunE has
// run; before that it returns a zero-value logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command for the slicer CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo, svc *services) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "slicer",
		Short: "Slice-based AI code modification",
		Long: `slicer turns a goal into a short ordered list of slices and drives each one
through a bounded loop: the model proposes file changes, slicer applies them,
runs your check commands, and asks the model to review the result.

Every prompt response, check log and summary is kept under
<working_directory>/.slicer/runs/<timestamp>/.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			flags.Output = v.GetString("output")
			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			logger := svc.initLogger(v.GetBool("verbose"), v.GetBool("quiet"))
			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	addPlanCommand(cmd, svc)
	addRunCommand(cmd, flags, svc)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// Errors are printed to stderr before being returned; the caller maps them
// to an exit code with ExitCodeForError.
func Execute(ctx context.Context, info BuildInfo) error {
	return execute(ctx, info, os.Args[1:], defaultServices(), os.Stdout, os.Stderr)
}

func execute(ctx context.Context, info BuildInfo, args []string, svc *services, stdout, stderr io.Writer) error {
	defer CloseLogFile()

	h := signal.NewHandler(ctx)
	defer h.Stop()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info, svc)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(h.Context())

	if err != nil && h.WasInterrupted() && !stderrors.Is(err, errors.ErrInterrupted) {
		err = errors.NewExitCode2Error(fmt.Errorf("%w: %w", errors.ErrInterrupted, err))
	}
	reportError(stderr, flags.Output, err)
	return err
}

// reportError prints err as "error: <msg>" with a hint. A failed run has
// already printed its summary, so nothing more is said about it.
func reportError(w io.Writer, format string, err error) {
	if err == nil || stderrors.Is(err, errors.ErrRunFailed) {
		return
	}
	if !IsValidOutputFormat(format) {
		format = OutputText
	}
	tui.NewOutput(w, format).Error(err)
}
