// Package cli wires the fieldtrace command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/fieldtrace/internal/cli/config"
	"github.com/coral-mesh/fieldtrace/internal/cli/demangle"
	"github.com/coral-mesh/fieldtrace/internal/cli/demo"
	"github.com/coral-mesh/fieldtrace/internal/cli/helpers"
	ferrors "github.com/coral-mesh/fieldtrace/internal/errors"
	"github.com/coral-mesh/fieldtrace/pkg/version"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fieldtrace",
		Short: "fieldtrace - report who reads and writes a field",
		Long: `fieldtrace instruments individual fields and reports every read and
write, with the resolved call stack that caused it, to pluggable observers.

This binary runs the bundled demo, inspects configuration and demangles
symbol names. Applications use the Go packages directly.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(helpers.FlagConfig, "", "Config file (default ./fieldtrace.yaml or $FIELDTRACE_CONFIG)")
	rootCmd.PersistentFlags().String(helpers.FlagLogLevel, "", "Log level (trace, debug, info, warn, error)")
	ferrors.Must(rootCmd.MarkPersistentFlagFilename(helpers.FlagConfig, "yaml", "yml", "toml"), "failed to annotate --config")

	rootCmd.AddCommand(demo.NewDemoCmd())
	rootCmd.AddCommand(demangle.NewDemangleCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("fieldtrace version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
