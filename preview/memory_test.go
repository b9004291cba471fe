package preview

import (
	"context"
	"testing"

	"github.com/mikios34/customer-admin/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("/dashboard/previews/")

	h, err := intake.NewFileHandle("photo.png", "image/png", pngHeader)
	require.NoError(t, err)

	res, err := store.Acquire(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/previews/"+res.ID, res.URL)
	assert.Equal(t, 1, store.Len())

	blob, err := store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", blob.Name)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, pngHeader, blob.Data)

	require.NoError(t, store.Release(ctx, res.ID))
	assert.Equal(t, 0, store.Len())
	_, err = store.Get(ctx, res.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
