package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/pipeconf/internal/logger"
	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/andresmejia3/pipeconf/internal/types"
	"github.com/andresmejia3/pipeconf/internal/utils"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

// envLogLevel is consulted when --log-level is not given.
const envLogLevel = "PIPECONF_LOG_LEVEL"

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "pipeconf",
	Short:         "Inspect, patch and validate vision pipeline settings",
	Version:       Version, // This enables the --version flag
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if env := os.Getenv(envLogLevel); env != "" {
				level = env
			}
		}
		log, err := logger.Configure(os.Stderr, level, logger.Format(logFormat))
		if err != nil {
			return fail("Configuration Error", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logger.WithContext(ctx, log))
		return nil
	},
}

// commandError carries the headline shown in the error box.
type commandError struct {
	context string
	err     error
}

func (e *commandError) Error() string { return e.context + ": " + e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func fail(context string, err error) error {
	return &commandError{context: context, err: err}
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func report(w io.Writer, err error) {
	var ce *commandError
	if errors.As(err, &ce) {
		utils.ShowError(w, ce.context, ce.err)
		return
	}
	utils.ShowError(w, "Command failed", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error (env "+envLogLevel+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatConsole), "Log format: console, json")
}

// --- shared helpers ---

func parseTypeArg(arg string) (types.PipelineType, error) {
	t, err := types.ParsePipelineType(arg)
	if err != nil {
		return 0, fail("Unknown pipeline type", err)
	}
	if !settings.HasSchema(t) {
		return 0, fail("Unsupported pipeline type", fmt.Errorf("%v: %w", t, settings.ErrUnsupportedPipeline))
	}
	return t, nil
}

func readRecord(path string) (settings.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fail("Unable to read settings record", err)
	}
	s, err := settings.Decode(data)
	if err != nil {
		return nil, fail("Invalid settings record "+path, err)
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail("Unable to encode output", err)
	}
	return nil
}
