package store

import (
	"path/filepath"
	"testing"

	"github.com/anthropics/codegraph/internal/model"
)

func TestOpen_NoPriorStateYieldsEmptyGraph(t *testing.T) {
	stateRoot := t.TempDir()

	ps, err := Open(stateRoot, "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stats := ps.GetStats()
	if stats.EntityCount != 0 || stats.EdgeCount != 0 {
		t.Fatalf("expected empty graph for a never-built project, got %#v", stats)
	}
}

func TestProjectStore_SaveThenReopen(t *testing.T) {
	stateRoot := t.TempDir()

	ps, err := Open(stateRoot, "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ps.WithWriteLock(func(g *model.Graph) {
		g.AddEntity(&model.Entity{ID: "e1", Name: "f", Kind: model.KindFunction, FilePath: "a.py", LineStart: 1})
		g.FileIndex["a.py"] = &model.FileContribution{EntityIDs: []string{"e1"}}
	})
	ps.Hashes["a.py"] = HashBytes([]byte("def f(): pass"))

	if err := ps.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(stateRoot, "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open (reopen): %v", err)
	}
	if reopened.GetStats().EntityCount != 1 {
		t.Fatalf("expected 1 entity after reopen, got %d", reopened.GetStats().EntityCount)
	}
	if reopened.Hashes["a.py"] == "" {
		t.Fatalf("expected file hash to survive reopen")
	}
}

func TestCallChain_UnknownRootIsError(t *testing.T) {
	ps, err := Open(t.TempDir(), "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := ps.CallChain("does-not-exist", 3); err == nil {
		t.Fatalf("expected error for unknown root entity")
	}
}

func TestCallChain_DepthOverHardCapIsError(t *testing.T) {
	ps, err := Open(t.TempDir(), "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ps.WithWriteLock(func(g *model.Graph) {
		g.AddEntity(&model.Entity{ID: "e1", Name: "f", Kind: model.KindFunction, FilePath: "a.py"})
	})
	if _, err := ps.CallChain("e1", model.MaxDepthCap+1); err == nil {
		t.Fatalf("expected error for depth beyond the hard cap")
	}
}

func TestFindEntityByNameInFile(t *testing.T) {
	ps, err := Open(t.TempDir(), "proj1", BackendText)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ps.WithWriteLock(func(g *model.Graph) {
		g.AddEntity(&model.Entity{ID: "e1", Name: "f", Kind: model.KindFunction, FilePath: "a.py", LineStart: 1})
		g.FileIndex["a.py"] = &model.FileContribution{EntityIDs: []string{"e1"}}
	})

	e, ok := ps.FindEntityByNameInFile("a.py", "f")
	if !ok || e.ID != "e1" {
		t.Fatalf("expected to resolve f in a.py, got %#v ok=%v", e, ok)
	}
	if _, ok := ps.FindEntityByNameInFile("a.py", "missing"); ok {
		t.Fatalf("expected no match for an undeclared name")
	}
}

func TestProjectDir(t *testing.T) {
	got := ProjectDir("/state", "proj1")
	want := filepath.Join("/state", "proj1")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
