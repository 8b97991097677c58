// Package blob defines the audio blob store contract and a local filesystem
// implementation.
//
// The pipeline persists every attempt's recording before anything else
// happens to it, under a deterministic path derived from the attempt's
// identity. The interface keeps object storage backends (S3, GCS, ...)
// swappable without touching the pipeline; the filesystem store is what
// single-node deployments and tests use.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the abstraction over any blob storage backend.
//
// Implementations must be safe for concurrent use. Put with the same path
// must be idempotent (last write wins) so that a retried upload never
// produces duplicates.
type Store interface {
	// Put stores data under path and returns an opaque reference that can
	// later be passed to Get. contentType is advisory; backends may ignore it.
	Put(ctx context.Context, path string, data []byte, contentType string) (ref string, err error)

	// Get retrieves the blob previously stored under ref.
	Get(ctx context.Context, ref string) ([]byte, error)
}

// FSStore persists blobs as files under a root directory. The returned ref
// is the path relative to the root.
type FSStore struct {
	root string
}

// Compile-time interface assertion.
var _ Store = (*FSStore)(nil)

// NewFSStore creates an FSStore rooted at dir, creating the directory if it
// does not exist.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob: root directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root %q: %w", dir, err)
	}
	return &FSStore{root: dir}, nil
}

// Put implements Store. The path must be relative and must not escape the
// store root.
func (s *FSStore) Put(ctx context.Context, path string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("blob: put %q: %w", path, err)
	}
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob: create parent for %q: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %q: %w", path, err)
	}
	return path, nil
}

// Get implements Store.
func (s *FSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("blob: get %q: %w", ref, err)
	}
	full, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("blob: read %q: %w", ref, err)
	}
	return data, nil
}

// resolve joins path onto the root and rejects traversal outside it.
func (s *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("blob: invalid path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}
