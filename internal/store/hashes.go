package store

import (
	"crypto/md5" // #nosec G501 -- content-change detection only, not integrity (§3)
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileHashes is the sidecar file_path -> content_hash map the
// incremental engine diffs against on every build (§3, §4.4).
type FileHashes map[string]string

// HashBytes computes the content hash the spec calls "128-bit
// cryptographic-quality... MD5-grade suffices since it is used only for
// change detection, not for integrity" (§3).
func HashBytes(data []byte) string {
	sum := md5.Sum(data) // #nosec G401 -- see package-level justification above
	return hex.EncodeToString(sum[:])
}

// LoadFileHashes reads file_hashes.json for one project. A missing file
// is treated as an empty map (first build).
func LoadFileHashes(path string) (FileHashes, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return FileHashes{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read file hashes: %w", err)
	}
	var h FileHashes
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("store: parse file hashes: %w", err)
	}
	if h == nil {
		h = FileHashes{}
	}
	return h, nil
}

// SaveFileHashes writes file_hashes.json atomically.
func SaveFileHashes(path string, h FileHashes) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal file hashes: %w", err)
	}
	return atomicWrite(path, data)
}
