package ingest

import (
	"context"
)

// Source provides access to raw CSV datasets by name
// (e.g. "airports.csv", "flights.csv", "connections.csv").
// Implementations exist for local directories and S3.
type Source interface {
	// Fetch retrieves the named dataset.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Close releases any resources held by the source.
	Close() error
}
