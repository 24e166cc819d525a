// Package buildengine implements C4, the incremental build engine: it
// walks a project tree, hashes files, decides what needs reparsing, and
// orchestrates the C1 -> C2 -> C3 pipeline before handing the result to
// C5 for persistence (§4.4).
package buildengine

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anthropics/codegraph/internal/config"
	"github.com/anthropics/codegraph/internal/exclude"
	"github.com/anthropics/codegraph/internal/parser"
)

// testFileMarkers are the filename substrings that mark a file as a
// test file for the include_tests configuration flag.
var testFileMarkers = []string{"_test.", ".test.", "/test/", "/tests/", "/__tests__/"}

func isTestFile(relPath string) bool {
	lower := "/" + strings.ToLower(filepath.ToSlash(relPath))
	for _, marker := range testFileMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, relPath string) bool {
	slash := filepath.ToSlash(relPath)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, slash); ok {
			return true
		}
		// Support "dir/**" style prefixes filepath.Match can't express.
		if strings.HasSuffix(pat, "/**") && strings.HasPrefix(slash, strings.TrimSuffix(pat, "/**")+"/") {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(slash)); ok {
			return true
		}
	}
	return false
}

// WalkFiles returns every recognized-extension file under root, sorted
// by path, honoring cfg.FollowSymlinks, cfg.IncludeTests, cfg's own
// exclude patterns, extraExcludes (caller-supplied, e.g. an HTTP
// request's exclude_patterns), and the auto-detected dependency
// directories from internal/exclude (§4.4 step 2).
func WalkFiles(root string, cfg *config.Config, extraExcludes []string) ([]string, error) {
	auto := exclude.DetectAutoExcludes(root)
	excludePatterns := append(append([]string{}, cfg.ExcludePatterns...), extraExcludes...)
	for _, d := range auto.Directories {
		excludePatterns = append(excludePatterns, d+"/**")
	}

	var files []string
	walkFn := func(path string, d os.DirEntry, err error) error {
		if path == root {
			if err != nil {
				// The project directory itself is unreadable: a
				// configuration error (§7), not a per-file skip.
				return err
			}
			return nil
		}
		if err != nil {
			return nil // unreadable entries are skipped, not fatal (§7)
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if matchesAny(excludePatterns, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !cfg.FollowSymlinks && d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if matchesAny(excludePatterns, rel) {
			return nil
		}
		if parser.LanguageFromExtension(filepath.Ext(path)) == "" {
			return nil
		}
		if !cfg.IncludeTests && isTestFile(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	}

	walkRoot := root
	if cfg.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			walkRoot = resolved
		}
	}
	if err := filepath.WalkDir(walkRoot, fs.WalkDirFunc(walkFn)); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
