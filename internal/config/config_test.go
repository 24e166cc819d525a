package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.StateRoot != "./.codegraph" {
		t.Errorf("expected state_root ./.codegraph, got %s", cfg.StateRoot)
	}
	if cfg.Serialization != "text" {
		t.Errorf("expected serialization text, got %s", cfg.Serialization)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("expected workers %d, got %d", runtime.NumCPU(), cfg.Workers)
	}
	if cfg.PerFileParseTimeoutS != 30 {
		t.Errorf("expected per_file_parse_timeout_s 30, got %d", cfg.PerFileParseTimeoutS)
	}
	if cfg.HierarchicalMaxDepth != 16 {
		t.Errorf("expected hierarchical_max_depth_cap 16, got %d", cfg.HierarchicalMaxDepth)
	}
	if cfg.CacheTTLS != 3600 {
		t.Errorf("expected cache_ttl_s 3600, got %d", cfg.CacheTTLS)
	}
	if cfg.MaxCacheEntries != 1000 {
		t.Errorf("expected max_cache_entries 1000, got %d", cfg.MaxCacheEntries)
	}
	if len(cfg.ExcludePatterns) == 0 {
		t.Errorf("expected non-empty default exclude_patterns")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"invalid serialization", func(c *Config) { c.Serialization = "protobuf" }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative timeout", func(c *Config) { c.PerFileParseTimeoutS = -1 }, true},
		{"depth cap too high", func(c *Config) { c.HierarchicalMaxDepth = 17 }, true},
		{"depth cap zero", func(c *Config) { c.HierarchicalMaxDepth = 0 }, true},
		{"negative cache ttl", func(c *Config) { c.CacheTTLS = -1 }, true},
		{"zero max cache entries", func(c *Config) { c.MaxCacheEntries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	defaults := DefaultConfig()

	t.Run("empty loaded uses all defaults", func(t *testing.T) {
		merged := Merge(&Config{}, defaults)
		if merged.Serialization != defaults.Serialization {
			t.Errorf("expected serialization %s, got %s", defaults.Serialization, merged.Serialization)
		}
		if merged.CacheTTLS != defaults.CacheTTLS {
			t.Errorf("expected cache_ttl_s %d, got %d", defaults.CacheTTLS, merged.CacheTTLS)
		}
	})

	t.Run("loaded values take precedence", func(t *testing.T) {
		loaded := &Config{Serialization: "binary", Workers: 2, CacheTTLS: 60}
		merged := Merge(loaded, defaults)

		if merged.Serialization != "binary" {
			t.Errorf("expected serialization binary, got %s", merged.Serialization)
		}
		if merged.Workers != 2 {
			t.Errorf("expected workers 2, got %d", merged.Workers)
		}
		if merged.CacheTTLS != 60 {
			t.Errorf("expected cache_ttl_s 60, got %d", merged.CacheTTLS)
		}
		if merged.MaxCacheEntries != defaults.MaxCacheEntries {
			t.Errorf("expected unset max_cache_entries to fall back to default")
		}
	})
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no config dir returns error", func(t *testing.T) {
		if _, err := FindConfigDir(subDir); err == nil {
			t.Error("expected error when no .codegraph directory exists")
		}
	})

	configDir := filepath.Join(projectDir, ConfigDirName)
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("finds config dir in current directory", func(t *testing.T) {
		found, err := FindConfigDir(projectDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})

	t.Run("finds config dir in parent directory", func(t *testing.T) {
		found, err := FindConfigDir(subDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates config directory", func(t *testing.T) {
		dir, err := EnsureConfigDir(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		expectedDir := filepath.Join(tmpDir, ConfigDirName)
		if dir != expectedDir {
			t.Errorf("expected %s, got %s", expectedDir, dir)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("config directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("returns existing directory", func(t *testing.T) {
		dir, err := EnsureConfigDir(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		expectedDir := filepath.Join(tmpDir, ConfigDirName)
		if dir != expectedDir {
			t.Errorf("expected %s, got %s", expectedDir, dir)
		}
	})
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("loads valid config file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		content := "serialization: binary\ncache_ttl_s: 120\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Serialization != "binary" {
			t.Errorf("expected serialization binary, got %s", cfg.Serialization)
		}
		if cfg.CacheTTLS != 120 {
			t.Errorf("expected cache_ttl_s 120, got %d", cfg.CacheTTLS)
		}
		if cfg.MaxCacheEntries != 1000 {
			t.Errorf("expected default max_cache_entries 1000, got %d", cfg.MaxCacheEntries)
		}
	})

	t.Run("returns defaults for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(tmpDir, "nonexistent.yaml"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Serialization != DefaultConfig().Serialization {
			t.Errorf("expected default serialization, got %s", cfg.Serialization)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("invalid: yaml: content"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFromPath(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for invalid config values", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "bad-values.yaml")
		if err := os.WriteFile(configPath, []byte("serialization: protobuf\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFromPath(configPath); err == nil {
			t.Error("expected error for invalid serialization")
		}
	})
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("returns defaults when no config dir exists", func(t *testing.T) {
		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Serialization != DefaultConfig().Serialization {
			t.Errorf("expected default config")
		}
	})

	t.Run("loads config from .codegraph directory", func(t *testing.T) {
		configDir := filepath.Join(tmpDir, ConfigDirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}
		configPath := filepath.Join(configDir, ConfigFileName)
		if err := os.WriteFile(configPath, []byte("serialization: binary\n"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Serialization != "binary" {
			t.Errorf("expected serialization binary, got %s", cfg.Serialization)
		}
	})
}

func TestSaveDefault(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates default config file", func(t *testing.T) {
		configPath, err := SaveDefault(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		expectedPath := filepath.Join(tmpDir, ConfigDirName, ConfigFileName)
		if configPath != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, configPath)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Errorf("failed to load saved config: %v", err)
		}
		if cfg.Serialization != DefaultConfig().Serialization {
			t.Errorf("saved config doesn't match defaults")
		}
	})

	t.Run("fails if config already exists", func(t *testing.T) {
		if _, err := SaveDefault(tmpDir); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}
