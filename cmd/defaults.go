package cmd

import (
	"fmt"
	"io"

	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/spf13/cobra"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults <type>",
	Short: "Print the default settings record of a pipeline type as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDefaults(cmd.OutOrStdout(), args[0])
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <type>",
	Short: "List the patchable fields of a pipeline type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runFields(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
	rootCmd.AddCommand(fieldsCmd)
}

func runDefaults(out io.Writer, arg string) error {
	t, err := parseTypeArg(arg)
	if err != nil {
		return err
	}
	s, err := settings.Defaults(t)
	if err != nil {
		return fail("Unsupported pipeline type", err)
	}
	return writeJSON(out, s)
}

func runFields(out io.Writer, arg string) error {
	t, err := parseTypeArg(arg)
	if err != nil {
		return err
	}
	s, err := settings.Defaults(t)
	if err != nil {
		return fail("Unsupported pipeline type", err)
	}
	for _, name := range settings.FieldNames(s) {
		fmt.Fprintln(out, name)
	}
	return nil
}
