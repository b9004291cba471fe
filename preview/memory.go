package preview

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/intake"
)

// MemoryStore holds previews in process memory.
type MemoryStore struct {
	urlPrefix string

	mu    sync.RWMutex
	blobs map[string]*Blob
}

// NewMemoryStore creates a store whose preview URLs start with urlPrefix.
func NewMemoryStore(urlPrefix string) *MemoryStore {
	return &MemoryStore{urlPrefix: urlPrefix, blobs: make(map[string]*Blob)}
}

func (s *MemoryStore) Acquire(_ context.Context, h *intake.FileHandle) (intake.PreviewResource, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = &Blob{Name: h.Name, ContentType: h.ContentType, Data: h.Bytes()}
	s.mu.Unlock()
	return intake.PreviewResource{ID: id, URL: joinURL(s.urlPrefix, id)}, nil
}

func (s *MemoryStore) Release(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// Len returns the number of live previews.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
