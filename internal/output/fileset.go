package output

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// fileMode keeps output files private to the running user. They hold
// identifiers and hashes.
const fileMode = 0o600

// FileSet tracks every file created during a run so the run can be rolled
// back as a unit.
type FileSet struct {
	mu    sync.Mutex
	paths []string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{}
}

// Create creates path and tracks it. An existing file is never
// overwritten.
func (s *FileSet) Create(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode) //nolint:gosec // Output path is built from the configured directory
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	s.Track(path)
	return f, nil
}

// Track adds a path created elsewhere, such as an encrypted copy.
func (s *FileSet) Track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

// Paths returns the tracked paths in creation order.
func (s *FileSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// RemoveAll deletes every tracked file. Files that no longer exist are
// ignored. The set is empty afterwards.
func (s *FileSet) RemoveAll() error {
	s.mu.Lock()
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
