package store

import (
	"path/filepath"
	"testing"

	"github.com/anthropics/codegraph/internal/model"
)

func sampleGraph() *model.Graph {
	g := model.NewGraph()
	g.AddEntity(&model.Entity{
		ID: "e1", Name: "f", Kind: model.KindFunction, FilePath: "a.py",
		LineStart: 1, LineEnd: 1, Language: "python",
		Parameters: []model.Param{{Name: "x", TypeName: "int"}},
		Annotations: []string{"pure"},
	})
	g.AddEntity(&model.Entity{ID: "e2", Name: "g", Kind: model.KindFunction, FilePath: "a.py", LineStart: 2, LineEnd: 2, Language: "python"})
	g.AddCallSite(&model.CallSite{ID: "cs1", CallerEntityID: "e1", CalleeName: "g", FilePath: "a.py", LineNumber: 1})
	g.AddEdge("e1", "e2", "cs1")
	g.FileIndex["a.py"] = &model.FileContribution{EntityIDs: []string{"e1", "e2"}, CallSiteIDs: []string{"cs1"}}
	return g
}

func graphsEqual(t *testing.T, a, b *model.Graph) {
	t.Helper()
	if len(a.Entities) != len(b.Entities) {
		t.Fatalf("entity count mismatch: %d vs %d", len(a.Entities), len(b.Entities))
	}
	for id, ae := range a.Entities {
		be, ok := b.Entities[id]
		if !ok {
			t.Fatalf("entity %s missing after round-trip", id)
		}
		if ae.Name != be.Name || ae.FilePath != be.FilePath || ae.Kind != be.Kind {
			t.Fatalf("entity %s mismatch: %#v vs %#v", id, ae, be)
		}
	}
	if len(a.Edges) != len(b.Edges) {
		t.Fatalf("edge count mismatch: %d vs %d", len(a.Edges), len(b.Edges))
	}
	for ek := range a.Edges {
		if _, ok := b.Edges[ek]; !ok {
			t.Fatalf("edge %#v missing after round-trip", ek)
		}
	}
}

func TestSaveLoadText_RoundTrip(t *testing.T) {
	g := sampleGraph()
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := SaveText(path, g); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	loaded, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	graphsEqual(t, g, loaded)

	if loaded.CalleesOf("e1")[0].ID != "e2" {
		t.Fatalf("expected resolved adjacency after reindex")
	}
}

func TestLoadText_MissingFileIsEmptyGraph(t *testing.T) {
	g, err := LoadText(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	if len(g.Entities) != 0 {
		t.Fatalf("expected empty graph for missing file")
	}
}

func TestSaveLoadBinary_RoundTrip(t *testing.T) {
	g := sampleGraph()
	path := filepath.Join(t.TempDir(), "graph.bin")

	if err := SaveBinary(path, g); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	loaded, err := LoadBinary(path)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
	graphsEqual(t, g, loaded)

	e1 := loaded.Entities["e1"]
	if len(e1.Parameters) != 1 || e1.Parameters[0].Name != "x" {
		t.Fatalf("expected parameters preserved, got %#v", e1.Parameters)
	}
	if len(e1.Annotations) != 1 || e1.Annotations[0] != "pure" {
		t.Fatalf("expected annotations preserved, got %#v", e1.Annotations)
	}
}

func TestLoadBinary_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := SaveFileHashes(path, FileHashes{"x": "y"}); err != nil {
		t.Fatalf("seed bad file: %v", err)
	}
	if _, err := LoadBinary(path); err == nil {
		t.Fatalf("expected error loading a non-binary-graph file")
	}
}
