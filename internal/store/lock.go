package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ProjectLock is the advisory per-project-directory file lock mandated
// by §5: two simultaneous builds of the same project serialize on this
// lock rather than racing the on-disk graph.
type ProjectLock struct {
	fl *flock.Flock
}

// NewProjectLock returns (but does not acquire) the lock for a
// project's state directory.
func NewProjectLock(projectDir string) (*ProjectLock, error) {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create project dir: %w", err)
	}
	return &ProjectLock{fl: flock.New(filepath.Join(projectDir, ".lock"))}, nil
}

// Lock blocks until the exclusive lock is acquired.
func (l *ProjectLock) Lock() error {
	return l.fl.Lock()
}

// Unlock releases the lock.
func (l *ProjectLock) Unlock() error {
	return l.fl.Unlock()
}
