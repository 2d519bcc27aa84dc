package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/tui"
)

type planOptions struct {
	specPath string
}

// addPlanCommand adds the plan command to the root command.
func addPlanCommand(root *cobra.Command, svc *services) {
	root.AddCommand(newPlanCmd(svc))
}

func newPlanCmd(svc *services) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planner and print the slice list",
		Long: `Load the spec, ask the model for an ordered slice plan, and print it as JSON.
Nothing in the working tree is modified. The planner's raw and parsed
responses are saved in a new run directory.

Examples:
  slicer plan --spec slicer.json
  slicer plan --spec slicer.json --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), opts, svc, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.specPath, "spec", "", "path to the spec file (JSON or YAML)")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func runPlan(ctx context.Context, opts *planOptions, svc *services, stdout, stderr io.Writer) error {
	spec, err := config.LoadSpec(ctx, opts.specPath)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	eng, err := svc.buildEngine(ctx, spec)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	result, err := eng.Plan(ctx, spec)
	if err != nil {
		if result != nil {
			tui.RenderPlanLocation(stderr, result.RunDir)
		}
		return errors.NewExitCode2Error(err)
	}

	if err := tui.NewJSONOutput(stdout).JSON(result.Slices); err != nil {
		return errors.NewExitCode2Error(err)
	}
	tui.RenderPlanLocation(stderr, result.RunDir)
	return nil
}
