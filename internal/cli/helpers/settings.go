package helpers

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/fieldtrace/internal/config"
	"github.com/coral-mesh/fieldtrace/internal/logging"
)

// Names of the persistent flags registered on the root command.
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

// LoadConfig loads the configuration named by --config and applies
// --log-level on top of it.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(FlagConfig)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(FlagLogLevel) {
		cfg.Logging.Level, _ = cmd.Flags().GetString(FlagLogLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewLogger builds the command logger, writing to the command's stderr.
func NewLogger(cmd *cobra.Command, cfg *config.Config, component string) zerolog.Logger {
	return logging.NewWithComponent(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	}, component)
}
