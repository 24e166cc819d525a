package cmd

import (
	"fmt"

	"github.com/anthropics/codegraph/internal/config"
	"github.com/anthropics/codegraph/internal/store"
)

// openProject resolves dir's project_id against the registry and
// hydrates its persisted graph, the shared first step of every query
// command (§4.5).
func openProject(dir string) (*config.Config, *store.ProjectStore, *store.ProjectMeta, error) {
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	reg, err := store.OpenRegistry(cfg.StateRoot)
	if err != nil {
		return nil, nil, nil, err
	}
	meta, err := reg.Resolve(dir)
	if err != nil {
		return nil, nil, nil, err
	}

	backend := store.BackendText
	if cfg.Serialization == "binary" {
		backend = store.BackendBinary
	}
	ps, err := store.Open(cfg.StateRoot, meta.ProjectID, backend)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, ps, meta, nil
}
