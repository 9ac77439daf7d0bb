package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andresmejia3/pipeconf/internal/logger"
	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/andresmejia3/pipeconf/internal/utils"
	"github.com/spf13/cobra"
)

// ApplyOptions holds the flags of the apply command.
type ApplyOptions struct {
	Type      string
	FromPath  string
	PatchFile string
	Sets      []string
}

var applyOpts ApplyOptions

var applyCmd = &cobra.Command{
	Use:   "apply [type]",
	Short: "Apply a partial override to a settings record and print the result",
	Long: `Apply merges a patch into a settings record. The record is either the
defaults of the given pipeline type or a stored record read with --from.
Patch values come from --file (YAML or JSON) and then --set, later values
winning. --set values are typed like YAML scalars, so a nickname made of
digits must be quoted: --set 'pipelineNickname="123"'. Unknown fields,
out-of-range values and attempts to change pipelineType are rejected and
nothing is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts := applyOpts
		if len(args) == 1 {
			opts.Type = args[0]
		}
		return runApply(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyOpts.FromPath, "from", "", "Stored settings record (JSON) to patch instead of the defaults")
	applyCmd.Flags().StringVarP(&applyOpts.PatchFile, "file", "f", "", "Patch file (YAML or JSON)")
	applyCmd.Flags().StringArrayVarP(&applyOpts.Sets, "set", "s", nil, `Field assignment key=value (repeatable). Values are YAML scalars: quote text that looks like a number or bool, e.g. --set 'pipelineNickname="123"'`)
	rootCmd.AddCommand(applyCmd)
}

func runApply(ctx context.Context, out io.Writer, opts ApplyOptions) error {
	log := logger.FromContext(ctx)

	cur, err := baseRecord(opts)
	if err != nil {
		return err
	}
	patch, err := collectPatch(opts)
	if err != nil {
		return err
	}

	log = logger.WithFields(log, map[string]interface{}{
		"pipeline": cur.PipelineType().String(),
		"fields":   len(patch),
	})
	next, err := settings.ApplyPatch(cur, patch)
	if err != nil {
		log.Warn().Err(err).Msg("Patch rejected")
		return fail(rejectionHeadline(err), err)
	}
	log.Debug().Msg("Patch applied")
	return writeJSON(out, next)
}

func baseRecord(opts ApplyOptions) (settings.Settings, error) {
	if opts.FromPath == "" {
		if opts.Type == "" {
			return nil, fail("Configuration Error", errors.New("either a pipeline type or --from is required"))
		}
		t, err := parseTypeArg(opts.Type)
		if err != nil {
			return nil, err
		}
		return settings.Defaults(t)
	}

	s, err := readRecord(opts.FromPath)
	if err != nil {
		return nil, err
	}
	if opts.Type != "" {
		t, err := parseTypeArg(opts.Type)
		if err != nil {
			return nil, err
		}
		if t != s.PipelineType() {
			err := fmt.Errorf("record is %v, not %v: %w", s.PipelineType(), t, settings.ErrDiscriminantTampering)
			return nil, fail("Pipeline type mismatch", err)
		}
	}
	return s, nil
}

func collectPatch(opts ApplyOptions) (map[string]any, error) {
	var fromFile map[string]any
	if opts.PatchFile != "" {
		p, err := utils.LoadPatchFile(opts.PatchFile)
		if err != nil {
			return nil, fail("Unable to load patch file", err)
		}
		fromFile = p
	}
	fromFlags, err := utils.ParseAssignments(opts.Sets)
	if err != nil {
		return nil, fail("Invalid --set", err)
	}
	return utils.MergePatches(fromFile, fromFlags), nil
}

func rejectionHeadline(err error) string {
	switch {
	case errors.Is(err, settings.ErrDiscriminantTampering):
		return "pipelineType cannot be changed by a patch"
	case errors.Is(err, settings.ErrUnknownField):
		return "Patch names unknown fields"
	case errors.Is(err, settings.ErrInvalidValue):
		return "Patch contains invalid values"
	case errors.Is(err, settings.ErrDomainViolation):
		return "Patch values are out of range"
	}
	return "Patch rejected"
}
