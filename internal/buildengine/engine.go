package buildengine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anthropics/codegraph/internal/config"
	"github.com/anthropics/codegraph/internal/extract"
	"github.com/anthropics/codegraph/internal/graphbuild"
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	"github.com/anthropics/codegraph/internal/store"
)

// Stats is the build_stats response for build() (§6).
type Stats struct {
	ProjectID      string        `json:"project_id"`
	FilesWalked    int           `json:"files_walked"`
	FilesUnchanged int           `json:"files_unchanged"`
	FilesModified  int           `json:"files_modified"`
	FilesNew       int           `json:"files_new"`
	FilesDeleted   int           `json:"files_deleted"`
	FilesDegraded  []string      `json:"files_degraded,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
	model.Stats
}

// ErrProjectDirUnreadable is surfaced when the project directory itself
// cannot be walked at all (§7 "Configuration errors").
var ErrProjectDirUnreadable = fmt.Errorf("buildengine: project directory unreadable")

// fileDelta is one worker's output for a single modified/new file: the
// normalized entities and call sites ready for C3, or a degraded flag
// if the parse failed or timed out.
type fileDelta struct {
	path      string
	hash      string
	entities  []model.Entity
	callSites []model.CallSite
	degraded  bool
	err       error
}

// Build runs one incremental build of projectDir against its persisted
// state under cfg.StateRoot, per the algorithm in §4.4.
func Build(ctx context.Context, projectDir string, cfg *config.Config, forceRebuild bool, extraExcludes []string, logger *zap.SugaredLogger) (*Stats, error) {
	start := time.Now()

	if _, err := os.Stat(projectDir); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProjectDirUnreadable, projectDir, err)
	}

	reg, err := store.OpenRegistry(cfg.StateRoot)
	if err != nil {
		return nil, err
	}
	meta, err := reg.Resolve(projectDir)
	if err != nil {
		return nil, err
	}

	lock, err := store.NewProjectLock(store.ProjectDir(cfg.StateRoot, meta.ProjectID))
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("buildengine: acquire project lock: %w", err)
	}
	defer lock.Unlock()

	backend := store.BackendText
	if cfg.Serialization == "binary" {
		backend = store.BackendBinary
	}
	ps, err := store.Open(cfg.StateRoot, meta.ProjectID, backend)
	if err != nil {
		return nil, err
	}

	files, err := WalkFiles(projectDir, cfg, extraExcludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProjectDirUnreadable, projectDir, err)
	}

	stats := &Stats{ProjectID: meta.ProjectID, FilesWalked: len(files)}

	currentPaths := make(map[string]struct{}, len(files))
	var toProcess []string
	for _, path := range files {
		currentPaths[path] = struct{}{}
		prevHash, known := ps.Hashes[path]
		if !forceRebuild && known {
			data, readErr := os.ReadFile(path)
			if readErr == nil && store.HashBytes(data) == prevHash {
				stats.FilesUnchanged++
				continue
			}
		}
		if known {
			stats.FilesModified++
		} else {
			stats.FilesNew++
		}
		toProcess = append(toProcess, path)
	}

	var deleted []string
	for path := range ps.Hashes {
		if _, ok := currentPaths[path]; !ok {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(deleted)
	stats.FilesDeleted = len(deleted)

	ps.WithWriteLock(func(g *model.Graph) {
		for _, path := range deleted {
			g.RemoveFile(path)
			delete(ps.Hashes, path)
		}
	})

	deltas, err := parseFiles(ctx, toProcess, cfg, logger)
	if err != nil {
		return nil, err
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].path < deltas[j].path })

	ps.WithWriteLock(func(g *model.Graph) {
		for _, d := range deltas {
			if d.err != nil {
				if logger != nil {
					logger.Warnw("file parse failed, keeping prior contribution", "file_path", d.path, "error", d.err)
				}
				continue
			}
			graphbuild.MergeFile(g, d.path, d.entities, d.callSites)
			ps.Hashes[d.path] = d.hash
			if d.degraded {
				stats.FilesDegraded = append(stats.FilesDegraded, d.path)
			}
		}
	})

	if err := ps.Save(); err != nil {
		return nil, err
	}
	if err := reg.Touch(meta.ProjectID); err != nil {
		return nil, err
	}

	stats.Stats = ps.GetStats()
	stats.Duration = time.Since(start)
	return stats, nil
}

// parseFiles runs C1 -> C2 for every path concurrently across
// cfg.Workers goroutines, returning one delta per file. A per-file
// parse error or timeout produces a degraded/err delta rather than
// aborting the whole build (§5 "Timeouts", §7).
func parseFiles(ctx context.Context, paths []string, cfg *config.Config, logger *zap.SugaredLogger) ([]fileDelta, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	deltas := make([]fileDelta, len(paths))
	sem := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			deltas[i] = parseOneFile(gctx, path, cfg, logger)
			return nil // per-file errors are recovered into the delta, never abort the group
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deltas, nil
}

func parseOneFile(ctx context.Context, path string, cfg *config.Config, logger *zap.SugaredLogger) fileDelta {
	timeout := time.Duration(cfg.PerFileParseTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		d fileDelta
	}
	done := make(chan result, 1)

	go func() {
		done <- result{d: doParse(path)}
	}()

	select {
	case <-fileCtx.Done():
		if logger != nil {
			logger.Warnw("file parse timed out, marking degraded", "file_path", path, "timeout_s", cfg.PerFileParseTimeoutS)
		}
		return fileDelta{path: path, degraded: true, err: fileCtx.Err()}
	case r := <-done:
		return r.d
	}
}

func doParse(path string) fileDelta {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileDelta{path: path, err: fmt.Errorf("read: %w", err)}
	}
	hash := store.HashBytes(data)

	lang := parser.LanguageFromExtension(extFor(path))
	if lang == "" {
		return fileDelta{path: path, hash: hash}
	}

	p, err := parser.NewParser(lang)
	if err != nil {
		return fileDelta{path: path, hash: hash, err: fmt.Errorf("new parser: %w", err)}
	}
	defer p.Close()

	parsed, err := p.Parse(data)
	if err != nil {
		return fileDelta{path: path, hash: hash, degraded: true, err: fmt.Errorf("parse: %w", err)}
	}
	defer parsed.Close()
	parsed.FilePath = path

	degraded := parsed.HasErrors()

	entities, callSites, _, err := extract.ExtractAndNormalize(parsed, path)
	if err != nil {
		return fileDelta{path: path, hash: hash, degraded: true, err: fmt.Errorf("extract: %w", err)}
	}

	return fileDelta{path: path, hash: hash, entities: entities, callSites: callSites, degraded: degraded}
}

func extFor(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
