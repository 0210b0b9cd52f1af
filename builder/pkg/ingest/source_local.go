package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSource implements Source over a directory of CSV files.
type LocalSource struct {
	dir string
}

// NewLocalSource creates a source reading from the given directory.
func NewLocalSource(dir string) (*LocalSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", dir)
	}
	return &LocalSource{dir: dir}, nil
}

// Fetch reads the named file from the directory.
func (s *LocalSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Close releases resources. For LocalSource, this is a no-op.
func (s *LocalSource) Close() error {
	return nil
}
