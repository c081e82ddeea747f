package files

import (
	"fmt"
	"sync"
)

// MemoryStore is a Store kept in a map, used for dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemoryStore returns a store seeded with a copy of files.
func NewMemoryStore(files map[string]string) *MemoryStore {
	snapshot := make(map[string]string, len(files))
	for k, v := range files {
		if cleaned, err := cleanPath(k); err == nil {
			snapshot[cleaned] = v
		}
	}
	return &MemoryStore{files: snapshot}
}

func (s *MemoryStore) Read(path string) (string, error) {
	rel, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[rel]
	if !ok {
		return "", fmt.Errorf("read %s: %w", rel, ErrNotFound)
	}
	return content, nil
}

func (s *MemoryStore) Write(path, content string) error {
	rel, err := cleanPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rel] = content
	return nil
}

func (s *MemoryStore) Copy(path, target string) error {
	src, err := cleanPath(path)
	if err != nil {
		return err
	}
	dst, err := cleanPath(target)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[src]
	if !ok {
		return fmt.Errorf("copy %s: %w", src, ErrNotFound)
	}
	s.files[dst] = content
	return nil
}

// Snapshot returns a copy of the stored files.
func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}
