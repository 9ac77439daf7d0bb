package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/andresmejia3/pipeconf/internal/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <record.json>...",
	Short: "Check stored settings records against their pipeline schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runValidate(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate checks every path and reports the first failure after all
// files have been seen.
func runValidate(ctx context.Context, out io.Writer, paths []string) error {
	log := logger.FromContext(ctx)

	var firstErr error
	for _, path := range paths {
		s, err := readRecord(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Invalid record")
			fmt.Fprintf(out, "FAIL\t%s\n", path)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(out, "OK\t%s\t%v\n", path, s.PipelineType())
	}
	return firstErr
}
