package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/fieldtrace/internal/constants"
	"github.com/coral-mesh/fieldtrace/internal/safe"
)

// Load builds the effective configuration: defaults, then the file at path,
// then environment overrides. Files ending in .toml are read as TOML, any
// other file as YAML. An empty path falls back to FIELDTRACE_CONFIG and then
// to ./fieldtrace.yaml; only an explicitly named file has to exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(constants.ConfigEnv)
	}
	if path == "" {
		path = constants.ConfigFile
		explicit = false
	}

	data, err := safe.ReadFile(path, &safe.ReadOptions{AllowSymlinks: true})
	switch {
	case err == nil:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
