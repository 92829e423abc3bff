// Package fileid derives stable source identifiers for course material files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "material:"

// ID returns the source ID shared by every chunk of the file at path. The path is
// cleaned first, so "/a/./b" and "/a/b/" name the same source.
func ID(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return prefix + hex.EncodeToString(sum[:16])
}

// Is reports whether sourceID was produced by ID.
func Is(sourceID string) bool {
	return len(sourceID) == len(prefix)+32 && sourceID[:len(prefix)] == prefix
}
