package cmd

import (
	"context"
	"io"

	"github.com/andresmejia3/pipeconf/internal/pipeline"
	"github.com/spf13/cobra"
)

// PlanOptions holds the flags of the plan command.
type PlanOptions struct {
	RecordPath string
	Fx, Fy     float64
	Cx, Cy     float64
}

var planOpts PlanOptions

var planCmd = &cobra.Command{
	Use:   "plan <record.json>",
	Short: "Print the stage parameters a pipeline would be built with",
	Long: `Plan derives detector, pose estimator and odometry parameters from a
stored settings record. Pass the camera intrinsics with --fx/--fy/--cx/--cy;
without them the camera is treated as uncalibrated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts := planOpts
		opts.RecordPath = args[0]
		return runPlan(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	planCmd.Flags().Float64Var(&planOpts.Fx, "fx", 0, "Focal length x in pixels")
	planCmd.Flags().Float64Var(&planOpts.Fy, "fy", 0, "Focal length y in pixels")
	planCmd.Flags().Float64Var(&planOpts.Cx, "cx", 0, "Principal point x in pixels")
	planCmd.Flags().Float64Var(&planOpts.Cy, "cy", 0, "Principal point y in pixels")
	planCmd.MarkFlagsRequiredTogether("fx", "fy", "cx", "cy")
	rootCmd.AddCommand(planCmd)
}

func runPlan(ctx context.Context, out io.Writer, opts PlanOptions) error {
	s, err := readRecord(opts.RecordPath)
	if err != nil {
		return err
	}

	var cal *pipeline.Calibration
	if opts.Fx != 0 || opts.Fy != 0 || opts.Cx != 0 || opts.Cy != 0 {
		cal = &pipeline.Calibration{Fx: opts.Fx, Fy: opts.Fy, Cx: opts.Cx, Cy: opts.Cy}
	}

	p, err := pipeline.NewPlan(ctx, s, cal)
	if err != nil {
		return fail("Unable to plan pipeline", err)
	}
	return writeJSON(out, p)
}
