package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalResultStore implements ResultStore with a single file on disk
type LocalResultStore struct {
	path string
}

// NewLocalResultStore creates a store writing to path, creating its directory
func NewLocalResultStore(path string) (*LocalResultStore, error) {
	if path == "" {
		return nil, fmt.Errorf("result file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	return &LocalResultStore{path: path}, nil
}

// Path returns the result file location
func (s *LocalResultStore) Path() string {
	return s.path
}

// SaveResults replaces the result file. The new content is written to a
// temporary file in the same directory and renamed over the old one, so
// readers never observe a partial list.
func (s *LocalResultStore) SaveResults(_ context.Context, urls []string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(FormatResults(urls)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op for local files
func (s *LocalResultStore) Close() error {
	return nil
}
