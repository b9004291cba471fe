// Package storage persists uploaded customer documents and returns the
// stored reference (URL) the dashboard displays.
package storage

import (
	"context"
	"io"
)

// ObjectStore stores document objects under a key.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}
