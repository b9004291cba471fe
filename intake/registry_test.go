package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type acceptAll struct{}

func (acceptAll) ValidateField(Draft, Field) string { return "" }
func (acceptAll) Validate(Draft) FieldErrors        { return nil }

type countingPreviews struct {
	mu   sync.Mutex
	next int
	live map[string]bool
}

func (p *countingPreviews) Acquire(_ context.Context, _ *FileHandle) (PreviewResource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live == nil {
		p.live = map[string]bool{}
	}
	p.next++
	id := fmt.Sprintf("p%d", p.next)
	p.live[id] = true
	return PreviewResource{ID: id, URL: "/previews/" + id}, nil
}

func (p *countingPreviews) Release(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, id)
	return nil
}

func (p *countingPreviews) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func openForm(t *testing.T, previews *countingPreviews, submit SubmitFunc) *Form {
	t.Helper()
	f, err := New(Options{Submit: submit, Schema: acceptAll{}, Previews: previews})
	require.NoError(t, err)
	h, err := NewFileHandle("photo.png", "image/png", []byte("\x89PNG\r\n\x1a\nphoto"))
	require.NoError(t, err)
	_, err = f.SelectFile(context.Background(), SlotProfile, h)
	require.NoError(t, err)
	return f
}

func succeed(context.Context, Payload) error { return nil }

func TestRegistryScopesFormsToOwner(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	f := openForm(t, &countingPreviews{}, succeed)
	r.Open(f, "admin-1")

	got, err := r.Get(f.ID(), "admin-1")
	require.NoError(t, err)
	assert.Same(t, f, got)

	_, err = r.Get(f.ID(), "admin-2")
	assert.ErrorIs(t, err, ErrFormNotFound)
	_, err = r.Get(uuid.New(), "admin-1")
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestRegistrySubmitDiscardsOnSuccess(t *testing.T) {
	previews := &countingPreviews{}
	r := NewRegistry(time.Minute, nil)
	f := openForm(t, previews, succeed)
	r.Open(f, "admin")
	require.Equal(t, 1, previews.count())

	require.NoError(t, r.Submit(context.Background(), f.ID(), "admin"))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, previews.count())
}

func TestRegistrySubmitKeepsFormOnFailure(t *testing.T) {
	previews := &countingPreviews{}
	boom := errors.New("rejected")
	r := NewRegistry(time.Minute, nil)
	f := openForm(t, previews, func(context.Context, Payload) error { return boom })
	r.Open(f, "admin")

	assert.ErrorIs(t, r.Submit(context.Background(), f.ID(), "admin"), boom)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, previews.count())
	assert.Equal(t, StateIdle, f.State())
}

func TestRegistryDiscard(t *testing.T) {
	previews := &countingPreviews{}
	r := NewRegistry(time.Minute, nil)
	f := openForm(t, previews, succeed)
	r.Open(f, "admin")

	require.NoError(t, r.Discard(context.Background(), f.ID(), "admin"))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, previews.count())
	assert.ErrorIs(t, r.Discard(context.Background(), f.ID(), "admin"), ErrFormNotFound)
}

func TestRegistrySweepExpiresIdleForms(t *testing.T) {
	previews := &countingPreviews{}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(10*time.Minute, nil)
	r.now = func() time.Time { return now }

	stale := openForm(t, previews, succeed)
	r.Open(stale, "admin")
	now = now.Add(8 * time.Minute)
	fresh := openForm(t, previews, succeed)
	r.Open(fresh, "admin")

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, r.Sweep(context.Background()))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, previews.count())

	_, err := r.Get(stale.ID(), "admin")
	assert.ErrorIs(t, err, ErrFormNotFound)
	_, err = r.Get(fresh.ID(), "admin")
	assert.NoError(t, err)
}

func TestRegistrySweepSkipsPendingForms(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	previews := &countingPreviews{}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Minute, nil)
	r.now = func() time.Time { return now }

	f := openForm(t, previews, func(context.Context, Payload) error {
		close(started)
		<-release
		return nil
	})
	r.Open(f, "admin")

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-started

	now = now.Add(time.Hour)
	assert.Equal(t, 0, r.Sweep(context.Background()))
	assert.Equal(t, 1, r.Len())

	close(release)
	require.NoError(t, <-done)
}

func TestRegistryRunClosesFormsOnShutdown(t *testing.T) {
	previews := &countingPreviews{}
	r := NewRegistry(time.Hour, nil)
	r.Open(openForm(t, previews, succeed), "admin")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, previews.count())
}
