package config

import (
	"github.com/coral-mesh/fieldtrace/internal/constants"
	"github.com/coral-mesh/fieldtrace/pkg/callstack"
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Pretty: true,
		},
		Trace: TraceConfig{
			CallSiteIndex: fieldtrace.CallSiteIndex,
			MaxDepth:      callstack.DefaultMaxDepth,
			Demangle:      constants.DefaultDemangleStyle,
			ProfileOutput: constants.DefaultProfileOutput,
			Symbols: SymbolsConfig{
				ELFCacheSize:    symbol.DefaultELFCacheSize,
				RefreshInterval: symbol.DefaultRefreshInterval,
			},
		},
	}
}
