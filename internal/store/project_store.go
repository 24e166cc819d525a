package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/anthropics/codegraph/internal/model"
)

// Backend names the serialization format a project uses.
type Backend string

const (
	BackendText   Backend = "text"
	BackendBinary Backend = "binary"
)

func graphFileName(b Backend) string {
	if b == BackendBinary {
		return "graph.bin"
	}
	return "graph.json"
}

// ProjectStore is the in-memory, lock-guarded handle for one project's
// graph plus the read-only query operations exposed to callers (§4.5).
// Rebuilds acquire the write side of mu for the merge phase; queries
// acquire the read side (§5 "Shared resources").
type ProjectStore struct {
	mu         sync.RWMutex
	ProjectID  string
	StateRoot  string
	Backend    Backend
	Graph      *model.Graph
	Hashes     FileHashes
}

// Open hydrates a project's graph and file hashes from disk. A project
// with no prior build yields an empty graph and empty hashes.
func Open(stateRoot, projectID string, backend Backend) (*ProjectStore, error) {
	dir := ProjectDir(stateRoot, projectID)
	graphPath := filepath.Join(dir, graphFileName(backend))

	var (
		g   *model.Graph
		err error
	)
	if backend == BackendBinary {
		g, err = LoadBinary(graphPath)
	} else {
		g, err = LoadText(graphPath)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load graph: %w", err)
	}

	hashes, err := LoadFileHashes(filepath.Join(dir, "file_hashes.json"))
	if err != nil {
		return nil, fmt.Errorf("store: load file hashes: %w", err)
	}

	return &ProjectStore{
		ProjectID: projectID,
		StateRoot: stateRoot,
		Backend:   backend,
		Graph:     g,
		Hashes:    hashes,
	}, nil
}

// Save flushes the current graph and file hashes to disk atomically.
func (s *ProjectStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := ProjectDir(s.StateRoot, s.ProjectID)
	graphPath := filepath.Join(dir, graphFileName(s.Backend))

	var err error
	if s.Backend == BackendBinary {
		err = SaveBinary(graphPath, s.Graph)
	} else {
		err = SaveText(graphPath, s.Graph)
	}
	if err != nil {
		return fmt.Errorf("store: save graph: %w", err)
	}

	if err := SaveFileHashes(filepath.Join(dir, "file_hashes.json"), s.Hashes); err != nil {
		return fmt.Errorf("store: save file hashes: %w", err)
	}
	return nil
}

// WithWriteLock runs fn with the graph's write lock held, the shape
// every rebuild's merge phase uses to serialize against concurrent
// queries (§5).
func (s *ProjectStore) WithWriteLock(fn func(g *model.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Graph)
}

// --- Read-only query surface (§4.5) ---

// GetStats implements get_stats.
func (s *ProjectStore) GetStats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.GetStats()
}

// EntitiesInFile implements entities_in_file.
func (s *ProjectStore) EntitiesInFile(path string) []*model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.EntitiesInFile(path)
}

// CallersOf implements callers_of.
func (s *ProjectStore) CallersOf(entityID string) []*model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.CallersOf(entityID)
}

// CalleesOf implements callees_of.
func (s *ProjectStore) CalleesOf(entityID string) []*model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.CalleesOf(entityID)
}

// ErrUnknownEntity is returned by query operations given an entity id
// absent from the graph (§7 "Query errors").
var ErrUnknownEntity = fmt.Errorf("store: unknown entity")

// ErrDepthExceedsCap is returned when a caller requests a call_chain or
// hierarchical-walk depth beyond model.MaxDepthCap (§7).
var ErrDepthExceedsCap = fmt.Errorf("store: requested depth exceeds hard cap")

// CallChain implements call_chain, applying the default/caps from §4.5.
func (s *ProjectStore) CallChain(rootID string, maxDepth int) (*model.HierarchicalNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.Graph.Entities[rootID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, rootID)
	}
	if maxDepth > model.MaxDepthCap {
		return nil, fmt.Errorf("%w: %d > %d", ErrDepthExceedsCap, maxDepth, model.MaxDepthCap)
	}
	return s.Graph.CallChain(rootID, maxDepth), nil
}

// FindEntityByNameInFile resolves a function_name within one file,
// preferring an exact match. Used by query_call_graph and
// query_code_snippet when a caller names a function instead of an id.
func (s *ProjectStore) FindEntityByNameInFile(filePath, name string) (*model.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.Graph.EntitiesInFile(filePath) {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
