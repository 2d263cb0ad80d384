// Package config implements the 'fieldtrace config' command family.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/fieldtrace/internal/cli/helpers"
	"github.com/coral-mesh/fieldtrace/internal/constants"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect fieldtrace configuration",
		Long: fmt.Sprintf(`Inspect fieldtrace configuration.

Configuration Priority:
  1. FIELDTRACE_* environment variables (highest)
  2. The file given with --config, or %s
  3. ./%s
  4. Built-in defaults`, constants.ConfigEnv, constants.ConfigFile),
	}

	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}

// newViewCmd creates the 'config view' command.
func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := helpers.LoadConfig(cmd); err != nil {
				return err
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}
}
