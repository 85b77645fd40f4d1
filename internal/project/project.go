// Package project derives stable project identity from a working
// directory.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// markers are the files/directories that identify a project root,
// checked in order at each level while walking upward.
var markers = []string{
	".git", "go.mod", "package.json", "Cargo.toml", "pyproject.toml", "Makefile",
}

// hashLen is the number of hex characters kept from the root digest.
const hashLen = 12

// Root walks upward from dir to the nearest directory containing a
// recognized project marker. Returns dir itself when no marker is found.
func Root(dir string) string {
	dir = filepath.Clean(dir)
	for current := dir; ; {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// Hash returns the stable identifier for the project containing dir:
// a truncated sha256 of the detected root path.
func Hash(dir string) string {
	if dir == "" {
		return ""
	}
	return HashRoot(Root(dir))
}

// HashRoot hashes an already-resolved project root path.
func HashRoot(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// Segment returns the trailing path segment of dir, used as a search
// term and keyword. Empty for the filesystem root.
func Segment(dir string) string {
	base := filepath.Base(strings.TrimRight(dir, "/"))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	return base
}
