// Package config loads fieldtrace configuration from YAML or TOML files and
// FIELDTRACE_* environment variables.
package config

import (
	"time"

	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// Config is the full configuration of the fieldtrace CLI.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Trace   TraceConfig   `yaml:"trace" toml:"trace"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level  string `yaml:"level" toml:"level" env:"FIELDTRACE_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" toml:"pretty" env:"FIELDTRACE_LOG_PRETTY"`
}

// TraceConfig controls how accesses are captured and reported.
type TraceConfig struct {
	// CallSiteIndex is the stack index reported as the caller. Only needs
	// changing when accessors are wrapped in extra helpers.
	CallSiteIndex int `yaml:"call_site_index" toml:"call_site_index" env:"FIELDTRACE_CALL_SITE_INDEX"`
	// MaxDepth bounds the raw frames captured per access.
	MaxDepth int `yaml:"max_depth" toml:"max_depth" env:"FIELDTRACE_MAX_DEPTH"`
	// Demangle is "full" or "short".
	Demangle string `yaml:"demangle" toml:"demangle" env:"FIELDTRACE_DEMANGLE"`
	// Filter is a CEL expression; only matching accesses are reported.
	Filter string `yaml:"filter,omitempty" toml:"filter,omitempty" env:"FIELDTRACE_FILTER"`
	// LogStack adds the whole resolved stack to each log line.
	LogStack bool `yaml:"log_stack" toml:"log_stack" env:"FIELDTRACE_LOG_STACK"`
	// ProfileOutput, when set, is where a pprof access profile is written.
	ProfileOutput string `yaml:"profile_output,omitempty" toml:"profile_output,omitempty" env:"FIELDTRACE_PROFILE_OUTPUT"`

	Symbols SymbolsConfig `yaml:"symbols" toml:"symbols"`
}

// SymbolsConfig tunes the runtime symbol resolver.
type SymbolsConfig struct {
	ELFCacheSize    int           `yaml:"elf_cache_size" toml:"elf_cache_size" env:"FIELDTRACE_ELF_CACHE_SIZE"`
	RefreshInterval time.Duration `yaml:"refresh_interval" toml:"refresh_interval" env:"FIELDTRACE_REFRESH_INTERVAL"`
}

// DemangleStyle parses Demangle.
func (t TraceConfig) DemangleStyle() (symbol.Style, error) {
	return symbol.ParseStyle(t.Demangle)
}
