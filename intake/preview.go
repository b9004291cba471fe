package intake

import "context"

// PreviewSource tells where a slot's preview image comes from.
type PreviewSource string

const (
	PreviewLocal       PreviewSource = "local"
	PreviewStored      PreviewSource = "stored"
	PreviewPlaceholder PreviewSource = "placeholder"
)

// Preview is what the dashboard displays for a slot.
type Preview struct {
	Source PreviewSource `json:"source"`
	URL    string        `json:"url"`
}

// PreviewResource is an owned, releasable preview of a selected file.
type PreviewResource struct {
	ID  string
	URL string
}

// PreviewStore acquires and releases preview resources for selected files.
type PreviewStore interface {
	Acquire(ctx context.Context, h *FileHandle) (PreviewResource, error)
	Release(ctx context.Context, id string) error
}
