// Package files reads, backs up and rewrites project files on behalf of the
// diff engine. Storage is abstracted behind Store so the same Manager drives
// the OS filesystem and in-memory snapshots.
package files

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Store when the requested file does not exist.
var ErrNotFound = errors.New("file does not exist")

// Store is the storage backend used by Manager.
type Store interface {
	// Read returns the content of path, or an error matching ErrNotFound.
	Read(path string) (string, error)
	// Write replaces the content of path, creating it when needed.
	Write(path, content string) error
	// Copy duplicates path to target. A missing source matches ErrNotFound.
	Copy(path, target string) error
}

func cleanPath(path string) (string, error) {
	rel := strings.TrimSpace(path)
	if rel == "" {
		return "", fmt.Errorf("invalid file path %q", path)
	}
	cleaned := filepath.Clean(rel)
	if cleaned == "." {
		return "", fmt.Errorf("invalid file path %q", path)
	}
	return cleaned, nil
}
