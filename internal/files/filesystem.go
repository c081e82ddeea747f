package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const specialBits = fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// ErrOutsideRoot is returned for paths that resolve outside a DirStore root.
var ErrOutsideRoot = errors.New("path is outside the project directory")

// DirStore is a Store backed by the OS filesystem. Relative paths resolve
// against the root directory; absolute paths must lie below it.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at root, or at the working directory
// when root is empty.
func NewDirStore(root string) (*DirStore, error) {
	dir := strings.TrimSpace(root)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &DirStore{root: dir}, nil
}

// Root returns the directory relative paths resolve against.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) Read(path string) (string, error) {
	abs, rel, err := s.resolvePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read %s: %w", rel, ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("failed to stat %s: %w", rel, err)
	case info.IsDir():
		return "", fmt.Errorf("cannot read directory %s", rel)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return string(content), nil
}

// Write replaces the file content, creating parent directories as needed.
// An existing file keeps its permission bits, including setuid, setgid and
// sticky.
func (s *DirStore) Write(path, content string) error {
	abs, rel, err := s.resolvePath(path)
	if err != nil {
		return err
	}

	var originalMode fs.FileMode
	if info, statErr := os.Stat(abs); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("cannot write directory %s", rel)
		}
		originalMode = info.Mode()
	}
	return writeFile(abs, rel, content, originalMode)
}

// Copy writes the content of path to target with the same permissions.
func (s *DirStore) Copy(path, target string) error {
	srcAbs, srcRel, err := s.resolvePath(path)
	if err != nil {
		return err
	}
	dstAbs, dstRel, err := s.resolvePath(target)
	if err != nil {
		return err
	}

	info, err := os.Stat(srcAbs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("copy %s: %w", srcRel, ErrNotFound)
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", srcRel, err)
	case info.IsDir():
		return fmt.Errorf("cannot copy directory %s", srcRel)
	}
	content, err := os.ReadFile(srcAbs)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", srcRel, err)
	}
	return writeFile(dstAbs, dstRel, string(content), info.Mode())
}

func writeFile(abs, rel, content string, originalMode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	perm := originalMode & fs.ModePerm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(abs, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if originalMode == 0 {
		return nil
	}

	// WriteFile leaves the mode of an existing file alone and applies the
	// umask to a new one, so restore the bits explicitly when they differ.
	desired := perm | (originalMode & specialBits)
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat %s after write: %w", rel, err)
	}
	if info.Mode()&(fs.ModePerm|specialBits) == desired {
		return nil
	}
	if err := os.Chmod(abs, desired); err != nil {
		return fmt.Errorf("failed to restore permissions for %s: %w", rel, err)
	}
	return nil
}

func (s *DirStore) resolvePath(path string) (string, string, error) {
	cleaned, err := cleanPath(path)
	if err != nil {
		return "", "", err
	}
	abs := cleaned
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, cleaned)
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return abs, cleaned, nil
}
