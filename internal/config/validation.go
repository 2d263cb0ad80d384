package config

import (
	"errors"
	"fmt"
	"slices"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the config for values the tracer cannot use.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q must be one of %v", c.Logging.Level, logLevels))
	}

	t := c.Trace
	if t.CallSiteIndex < 0 {
		errs = append(errs, fmt.Errorf("trace.call_site_index must not be negative, got %d", t.CallSiteIndex))
	}
	if t.MaxDepth <= t.CallSiteIndex {
		errs = append(errs, fmt.Errorf("trace.max_depth (%d) must exceed trace.call_site_index (%d)", t.MaxDepth, t.CallSiteIndex))
	}
	if _, err := t.DemangleStyle(); err != nil {
		errs = append(errs, fmt.Errorf("trace.demangle: %w", err))
	}
	if t.Symbols.ELFCacheSize < 1 {
		errs = append(errs, fmt.Errorf("trace.symbols.elf_cache_size must be at least 1, got %d", t.Symbols.ELFCacheSize))
	}
	if t.Symbols.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("trace.symbols.refresh_interval must not be negative, got %s", t.Symbols.RefreshInterval))
	}

	return errors.Join(errs...)
}
