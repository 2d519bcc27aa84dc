package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/tui"
)

type runOptions struct {
	specPath          string
	continueOnFailure bool
}

// addRunCommand adds the run command to the root command.
func addRunCommand(root *cobra.Command, flags *GlobalFlags, svc *services) {
	root.AddCommand(newRunCmd(flags, svc))
}

func newRunCmd(flags *GlobalFlags, svc *services) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan and execute every slice",
		Long: `Load the spec, plan the slices, and execute them in order. Each slice gets
a bounded number of attempts; an attempt passes when every check command
exits 0 and the reviewer accepts the change.

By default the run stops at the first failed slice. Use --continue-on-failure
to attempt the remaining slices anyway.

Exit codes:
  0  every slice passed
  1  the run completed but at least one slice failed
  2  an error aborted the run

Examples:
  slicer run --spec slicer.json
  slicer run --spec slicer.json --continue-on-failure --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), opts, flags.Output, svc, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.specPath, "spec", "", "path to the spec file (JSON or YAML)")
	cmd.Flags().BoolVar(&opts.continueOnFailure, "continue-on-failure", false, "keep going after a slice fails")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func runRun(ctx context.Context, opts *runOptions, format string, svc *services, stdout, stderr io.Writer) error {
	tui.CheckNoColor()
	logger := zerolog.Ctx(ctx)

	spec, err := config.LoadSpec(ctx, opts.specPath)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	eng, err := svc.buildEngine(ctx, spec)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	summary, err := eng.Execute(ctx, spec, opts.continueOnFailure)
	if err != nil {
		if summary != nil && summary.RunDir != "" {
			_, _ = fmt.Fprintf(stderr, "Run directory: %s\n", summary.RunDir)
		}
		return errors.NewExitCode2Error(err)
	}

	if format == OutputJSON {
		if err := tui.NewJSONOutput(stdout).JSON(summary); err != nil {
			return errors.NewExitCode2Error(err)
		}
	} else {
		tui.RenderRunSummary(stdout, summary)
	}

	if summary.Failed {
		failed := summary.FailedSlices()
		logger.Warn().Strs("failed_slices", failed).Msg("run finished with failures")
		return fmt.Errorf("%w: %s", errors.ErrRunFailed, strings.Join(failed, ", "))
	}
	logger.Info().Int("slices", len(summary.Slices)).Msg("run finished")
	return nil
}
