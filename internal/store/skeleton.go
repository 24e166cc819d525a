package store

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/codegraph/internal/model"
)

// CodeSkeleton implements code_skeleton: a pretty-printed, bodies-
// stripped outline of a file's entities (names, signatures, line
// ranges), in declaration order.
func (s *ProjectStore) CodeSkeleton(filePath string) string {
	entities := s.EntitiesInFile(filePath)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", filePath)
	for _, e := range entities {
		fmt.Fprintf(&sb, "%s:%d-%d %s\n", e.FilePath, e.LineStart, e.LineEnd, skeletonSignature(e))
	}
	return sb.String()
}

// skeletonSignature renders one entity as a single-line outline entry:
// kind, qualified name, and a Go-ish parameter/return signature, the way
// a stripped-bodies `{ ... }` skeleton reads (§4.5).
func skeletonSignature(e *model.Entity) string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteByte(' ')
	if e.Namespace != "" {
		sb.WriteString(e.Namespace)
		if !strings.HasSuffix(e.Namespace, ".") && !strings.HasSuffix(e.Namespace, "::") {
			sb.WriteString(".")
		}
	}
	sb.WriteString(e.Name)
	sb.WriteByte('(')
	for i, p := range e.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if p.TypeName != "" {
			sb.WriteString(" ")
			sb.WriteString(p.TypeName)
		}
	}
	sb.WriteByte(')')
	if e.ReturnType != "" {
		sb.WriteString(" -> ")
		sb.WriteString(e.ReturnType)
	}
	if e.Kind != model.KindClass && e.Kind != model.KindStruct && e.Kind != model.KindInterface && e.Kind != model.KindModule {
		sb.WriteString(" { ... }")
	}
	return sb.String()
}

// CodeSnippet implements code_snippet: the raw source slice of the
// named entity (or the whole file when functionName is empty), padded
// by contextLines on each side.
func (s *ProjectStore) CodeSnippet(filePath, functionName string, contextLines int) (string, error) {
	var start, end int

	if functionName == "" {
		return readLineRange(filePath, 1, 1<<30, 0)
	} else {
		e, ok := s.FindEntityByNameInFile(filePath, functionName)
		if !ok {
			return "", fmt.Errorf("%w: function %q not found in %s", ErrUnknownEntity, functionName, filePath)
		}
		start, end = e.LineStart, e.LineEnd
	}

	return readLineRange(filePath, start, end, contextLines)
}

func readLineRange(filePath string, start, end, contextLines int) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("store: open %s: %w", filePath, err)
	}
	defer f.Close()

	lo := start - contextLines
	if lo < 1 {
		lo = 1
	}
	hi := end + contextLines

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for scanner.Scan() {
		n++
		if n < lo {
			continue
		}
		if n > hi {
			break
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("store: read %s: %w", filePath, err)
	}
	return strings.Join(lines, "\n"), nil
}

// InvestigateSummary is the payload for investigate_repo (§6): total
// functions, the top-N "core" functions by out-degree, per-file
// skeletons, and the directory tree.
type InvestigateSummary struct {
	TotalFunctions int               `json:"total_functions"`
	CoreFunctions  []CoreFunction    `json:"core_functions"`
	FileSkeletons  map[string]string `json:"file_skeletons"`
	Directories    []string          `json:"directories"`
}

// CoreFunction is one entry in investigate_repo's top-N ranking.
type CoreFunction struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	OutDeg   int    `json:"out_degree"`
}

// Investigate implements investigate_repo: a project-wide summary over
// the in-memory graph, independent of the original directory walk (the
// FileIndex already names every contributing file).
func (s *ProjectStore) Investigate(topN int) InvestigateSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := InvestigateSummary{FileSkeletons: make(map[string]string)}

	dirSet := make(map[string]struct{})
	for path := range s.Graph.FileIndex {
		dirSet[dirOf(path)] = struct{}{}
	}
	for d := range dirSet {
		summary.Directories = append(summary.Directories, d)
	}
	sort.Strings(summary.Directories)

	for _, e := range s.Graph.Entities {
		if e.Kind == model.KindFunction || e.Kind == model.KindMethod {
			summary.TotalFunctions++
		}
	}

	candidates := make([]CoreFunction, 0, len(s.Graph.Entities))
	for id, e := range s.Graph.Entities {
		candidates = append(candidates, CoreFunction{
			EntityID: id,
			Name:     e.Name,
			FilePath: e.FilePath,
			OutDeg:   s.Graph.OutDegree(id),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].OutDeg != candidates[j].OutDeg {
			return candidates[i].OutDeg > candidates[j].OutDeg
		}
		return candidates[i].EntityID < candidates[j].EntityID
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	summary.CoreFunctions = candidates

	for path := range s.Graph.FileIndex {
		summary.FileSkeletons[path] = s.CodeSkeletonLocked(path)
	}

	return summary
}

// CodeSkeletonLocked is CodeSkeleton's body without re-acquiring the
// read lock, for callers (like Investigate) that already hold it.
func (s *ProjectStore) CodeSkeletonLocked(filePath string) string {
	entities := s.Graph.EntitiesInFile(filePath)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", filePath)
	for _, e := range entities {
		fmt.Fprintf(&sb, "%s:%d-%d %s\n", e.FilePath, e.LineStart, e.LineEnd, skeletonSignature(e))
	}
	return sb.String()
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
