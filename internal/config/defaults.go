package config

import "runtime"

// DefaultConfig returns configuration with sensible defaults, used when
// no config file exists or a config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		StateRoot:            "./.codegraph",
		Serialization:        "text",
		Workers:              runtime.NumCPU(),
		IncludeTests:         false,
		FollowSymlinks:       false,
		PerFileParseTimeoutS: 30,
		HierarchicalMaxDepth: 16,
		CacheTTLS:            3600,
		MaxCacheEntries:      1000,
		ExcludePatterns: []string{
			"node_modules/**",
			"target/**",
			"vendor/**",
			"dist/**",
			"build/**",
		},
	}
}

// Merge merges loaded config with defaults. Values from loaded config
// take precedence over defaults whenever they were explicitly set.
func Merge(loaded, defaults *Config) *Config {
	result := *defaults

	if loaded.StateRoot != "" {
		result.StateRoot = loaded.StateRoot
	}
	if loaded.Serialization != "" {
		result.Serialization = loaded.Serialization
	}
	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	}
	if loaded.PerFileParseTimeoutS != 0 {
		result.PerFileParseTimeoutS = loaded.PerFileParseTimeoutS
	}
	if loaded.HierarchicalMaxDepth != 0 {
		result.HierarchicalMaxDepth = loaded.HierarchicalMaxDepth
	}
	if loaded.CacheTTLS != 0 {
		result.CacheTTLS = loaded.CacheTTLS
	}
	if loaded.MaxCacheEntries != 0 {
		result.MaxCacheEntries = loaded.MaxCacheEntries
	}
	if len(loaded.ExcludePatterns) > 0 {
		result.ExcludePatterns = loaded.ExcludePatterns
	}

	// IncludeTests/FollowSymlinks: booleans can't distinguish "unset"
	// from "explicitly false" after YAML unmarshal, so the loaded value
	// always wins once a config file exists at all (callers who want the
	// default simply omit the key and get false either way here).
	result.IncludeTests = loaded.IncludeTests
	result.FollowSymlinks = loaded.FollowSymlinks

	return &result
}
