package store

import (
	"path/filepath"
	"testing"
)

func TestHashBytes_DeterministicAndContentSensitive(t *testing.T) {
	h1 := HashBytes([]byte("hello"))
	h2 := HashBytes([]byte("hello"))
	h3 := HashBytes([]byte("hello!"))

	if h1 != h2 {
		t.Fatalf("expected identical content to hash identically, got %q and %q", h1, h2)
	}
	if h1 == h3 {
		t.Fatalf("expected different content to hash differently")
	}
}

func TestFileHashes_MissingFileIsEmptyMap(t *testing.T) {
	h, err := LoadFileHashes(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("LoadFileHashes: %v", err)
	}
	if len(h) != 0 {
		t.Fatalf("expected empty map for missing file, got %v", h)
	}
}

func TestFileHashes_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file_hashes.json")
	h := FileHashes{"a.go": HashBytes([]byte("a")), "b.go": HashBytes([]byte("b"))}

	if err := SaveFileHashes(path, h); err != nil {
		t.Fatalf("SaveFileHashes: %v", err)
	}
	loaded, err := LoadFileHashes(path)
	if err != nil {
		t.Fatalf("LoadFileHashes: %v", err)
	}
	if len(loaded) != len(h) {
		t.Fatalf("expected %d entries, got %d", len(h), len(loaded))
	}
	for k, v := range h {
		if loaded[k] != v {
			t.Fatalf("expected %s -> %s, got %s", k, v, loaded[k])
		}
	}
}
