package ingest

import (
	"context"
	"fmt"
)

// MockSource is a Source implementation for testing.
type MockSource struct {
	Files    map[string][]byte
	FetchErr error
	Closed   bool
}

// NewMockSource creates a new MockSource serving the given files.
func NewMockSource(files map[string][]byte) *MockSource {
	return &MockSource{Files: files}
}

// Fetch returns the configured file contents or error.
func (m *MockSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	data, ok := m.Files[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return data, nil
}

// Close marks the source as closed.
func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}
