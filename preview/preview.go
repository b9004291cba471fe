// Package preview keeps short-lived copies of locally selected files so the
// dashboard can show them before they are uploaded.
package preview

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("preview not found")

// Blob is the stored content of a preview.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Reader serves preview content by id.
type Reader interface {
	Get(ctx context.Context, id string) (*Blob, error)
}

func joinURL(prefix, id string) string {
	return strings.TrimRight(prefix, "/") + "/" + id
}
