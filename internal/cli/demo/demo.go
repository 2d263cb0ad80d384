// Package demo implements the 'fieldtrace demo' command.
package demo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/fieldtrace/internal/cli/helpers"
	"github.com/coral-mesh/fieldtrace/internal/config"
	sample "github.com/coral-mesh/fieldtrace/internal/demo"
	ferrors "github.com/coral-mesh/fieldtrace/internal/errors"
	"github.com/coral-mesh/fieldtrace/pkg/callstack"
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace/observer"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

type options struct {
	filter   string
	profile  string
	untraced bool
	stack    bool
	demangle helpers.StyleFlag
	format   string
}

// NewDemoCmd creates the demo command.
func NewDemoCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Trace a sample account through a fixed sequence of accesses",
		Long: `Run a small instrumented aggregate and report every traced access.

The account starts with a balance of 12, which is set to 5 and then to 10.
A deposit reads and writes it once more and the owner is renamed. Each
access is logged with its call site and listed on stdout when the run ends.

Examples:
  # Table of all accesses
  fieldtrace demo

  # Only writes, as JSON
  fieldtrace demo --filter 'kind == "write"' -o json

  # Write a pprof profile of call sites
  fieldtrace demo --profile accesses.pb.gz && go tool pprof -top accesses.pb.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(opts.format, helpers.SupportedFormats); err != nil {
				return err
			}

			cfg, err := helpers.LoadConfig(cmd)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := helpers.NewLogger(cmd, cfg, "demo")
			return run(cmd, cfg, opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "CEL expression selecting which accesses to report")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Write a pprof access profile to this file")
	cmd.Flags().BoolVar(&opts.untraced, "untraced", false, "Run with tracing disabled on every field")
	cmd.Flags().BoolVar(&opts.stack, "stack", false, "Log the full resolved stack of every access")
	helpers.AddDemangleFlag(cmd, &opts.demangle)
	helpers.AddFormatFlag(cmd, &opts.format, helpers.FormatTable, helpers.SupportedFormats)
	ferrors.Must(cmd.MarkFlagFilename("profile", "pb.gz", "pprof"), "failed to annotate --profile")

	return cmd
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	if cmd.Flags().Changed("filter") {
		cfg.Trace.Filter = opts.filter
	}
	if cmd.Flags().Changed("profile") {
		cfg.Trace.ProfileOutput = opts.profile
	}
	if cmd.Flags().Changed("stack") {
		cfg.Trace.LogStack = opts.stack
	}
	if cmd.Flags().Changed("demangle") {
		cfg.Trace.Demangle = opts.demangle.String()
	}
}

func run(cmd *cobra.Command, cfg *config.Config, opts options, logger zerolog.Logger) error {
	style, err := cfg.Trace.DemangleStyle()
	if err != nil {
		return err
	}

	resolver := symbol.NewRuntimeResolver(
		symbol.WithLogger(logger),
		symbol.WithELFCacheSize(cfg.Trace.Symbols.ELFCacheSize),
		symbol.WithRefreshInterval(cfg.Trace.Symbols.RefreshInterval),
	)
	capturer := callstack.NewCapturer(resolver, callstack.WithLogger(logger))

	logOpts := []observer.LogOption{observer.WithDemangleStyle(style)}
	if cfg.Trace.LogStack {
		logOpts = append(logOpts, observer.WithStack())
	}

	rec := observer.NewRecorder()
	sinks := []fieldtrace.ErasedObserver{observer.NewLogger(logger, logOpts...), rec.Observe}

	var prof *observer.Profile
	if cfg.Trace.ProfileOutput != "" {
		prof = observer.NewProfile()
		sinks = append(sinks, prof.Observe)
	}

	sink := observer.Multi(sinks...)
	if cfg.Trace.Filter != "" {
		if sink, err = observer.NewFilter(cfg.Trace.Filter, sink); err != nil {
			return err
		}
	}

	result := sample.Run(sink, opts.untraced,
		fieldtrace.WithCapturer(capturer),
		fieldtrace.WithMaxDepth(cfg.Trace.MaxDepth),
		fieldtrace.WithCallSiteIndex(cfg.Trace.CallSiteIndex),
	)

	logger.Info().
		Int("balance", result.Balance).
		Str("owner", result.Owner).
		Int("reported", rec.Len()).
		Msg("Demo finished")

	if prof != nil {
		if err := writeProfile(prof, cfg.Trace.ProfileOutput, logger); err != nil {
			return err
		}
	}

	formatter, err := helpers.NewFormatter(helpers.OutputFormat(opts.format))
	if err != nil {
		return err
	}
	return formatter.Format(eventRows(rec.Events(), style), cmd.OutOrStdout())
}

func writeProfile(prof *observer.Profile, path string, logger zerolog.Logger) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
	}

	//nolint:gosec // G304: Output path is chosen by the user.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := prof.Write(f); err != nil {
		ferrors.DeferClose(logger, f, "failed to close profile")
		return err
	}
	if err := ferrors.CloseAll(logger, f); err != nil {
		return fmt.Errorf("failed to close profile: %w", err)
	}

	logger.Info().Str("path", path).Int("samples", prof.Len()).Msg("Access profile written")
	return nil
}
