package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/andresmejia3/pipeconf/internal/types"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all pipeline types and whether they carry a settings schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCHEMA\tFIELDS")
	fmt.Fprintln(w, "--\t----\t------\t------")

	for _, t := range types.PipelineTypes() {
		s, err := settings.Defaults(t)
		if err != nil {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", int(t), t, "no", "-")
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", int(t), t, "yes", len(settings.FieldNames(s)))
	}
	return w.Flush()
}
