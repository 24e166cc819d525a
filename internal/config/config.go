// Package config loads and validates codegraph's YAML configuration,
// searching upward from a working directory the same way the teacher's
// config package locates its own dotfile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the codegraph configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the codegraph configuration directory.
const ConfigDirName = ".codegraph"

// Config holds all codegraph configuration.
type Config struct {
	StateRoot              string   `yaml:"state_root"`
	Serialization          string   `yaml:"serialization"` // "text" | "binary"
	Workers                int      `yaml:"workers"`
	IncludeTests           bool     `yaml:"include_tests"`
	FollowSymlinks         bool     `yaml:"follow_symlinks"`
	PerFileParseTimeoutS   int      `yaml:"per_file_parse_timeout_s"`
	HierarchicalMaxDepth   int      `yaml:"hierarchical_max_depth_cap"`
	CacheTTLS              int      `yaml:"cache_ttl_s"`
	MaxCacheEntries        int      `yaml:"max_cache_entries"`
	ExcludePatterns        []string `yaml:"exclude_patterns"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidSerializations lists the supported graph serialization backends.
var ValidSerializations = []string{"text", "binary"}

// Load reads config from .codegraph/config.yaml, falling back to
// defaults. It searches for the config directory starting from workDir
// and walking up the directory tree. If no config is found, returns
// defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path, merging it over
// defaults and validating the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .codegraph directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return configDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .codegraph directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that config values are within the ranges the rest of
// the pipeline assumes.
func Validate(cfg *Config) error {
	if !isValidSerialization(cfg.Serialization) {
		return fmt.Errorf("%w: serialization must be one of %v, got %q",
			ErrInvalidConfig, ValidSerializations, cfg.Serialization)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.PerFileParseTimeoutS <= 0 {
		return fmt.Errorf("%w: per_file_parse_timeout_s must be positive, got %d",
			ErrInvalidConfig, cfg.PerFileParseTimeoutS)
	}
	if cfg.HierarchicalMaxDepth <= 0 || cfg.HierarchicalMaxDepth > 16 {
		return fmt.Errorf("%w: hierarchical_max_depth_cap must be in (0,16], got %d",
			ErrInvalidConfig, cfg.HierarchicalMaxDepth)
	}
	if cfg.CacheTTLS < 0 {
		return fmt.Errorf("%w: cache_ttl_s must be non-negative, got %d", ErrInvalidConfig, cfg.CacheTTLS)
	}
	if cfg.MaxCacheEntries <= 0 {
		return fmt.Errorf("%w: max_cache_entries must be positive, got %d", ErrInvalidConfig, cfg.MaxCacheEntries)
	}
	return nil
}

func isValidSerialization(s string) bool {
	for _, v := range ValidSerializations {
		if s == v {
			return true
		}
	}
	return false
}

// SaveDefault writes the default configuration to .codegraph/config.yaml
// in workDir, creating the directory if needed.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# codegraph configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
