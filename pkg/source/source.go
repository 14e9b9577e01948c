// Package source abstracts where linted files come from.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotDirectory is returned when a local source root is not a directory.
	ErrNotDirectory = errors.New("source: root is not a directory")
	// ErrOutsideRoot is returned for paths escaping the source root.
	ErrOutsideRoot = errors.New("source: path outside root")
)

// Source provides read access to files below a root directory. Paths are
// relative to Root.
type Source interface {
	Root() string
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Close() error
}

// Writer is implemented by sources that accept rewritten files.
type Writer interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}

// LocalSource reads from the local filesystem.
type LocalSource struct {
	root string
}

var (
	_ Source = (*LocalSource)(nil)
	_ Writer = (*LocalSource)(nil)
)

// NewLocalSource creates a source rooted at root, resolved to an absolute path.
func NewLocalSource(root string) (*LocalSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("source: resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source: stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return &LocalSource{root: abs}, nil
}

func (s *LocalSource) Root() string { return s.root }

// Open opens path for reading.
func (s *LocalSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// WriteFile replaces the content of path, keeping its permissions.
func (s *LocalSource) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(full, data, mode)
}

// Close is a no-op for local sources.
func (s *LocalSource) Close() error { return nil }

func (s *LocalSource) resolve(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.root, path)
	}
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}
