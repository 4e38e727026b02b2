package evidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadIsContentAddressed(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	cid1, err := store.Upload(ctx, File{Name: "license.pdf", Data: []byte("bar license scan")})
	require.NoError(t, err)
	cid2, err := store.Upload(ctx, File{Name: "copy.pdf", Data: []byte("bar license scan")})
	require.NoError(t, err)

	assert.Equal(t, cid1, cid2, "identical bytes must yield the same CID")

	cid3, err := store.Upload(ctx, File{Name: "other.pdf", Data: []byte("different content")})
	require.NoError(t, err)
	assert.NotEqual(t, cid1, cid3)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Upload(context.Background(), File{Name: "empty.pdf"})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUploadHonorsCancellation(t *testing.T) {
	store := NewInMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Upload(ctx, File{Name: "doc.pdf", Data: []byte("x")})
	assert.Error(t, err)
}

func TestUploadManyPreservesOrder(t *testing.T) {
	store := NewInMemoryStore()
	files := []File{
		{Name: "a", Data: []byte("aaa")},
		{Name: "b", Data: []byte("bbb")},
		{Name: "c", Data: []byte("ccc")},
	}

	cids, err := store.UploadMany(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, cids, 3)

	for i, f := range files {
		assert.Equal(t, CID(f.Data), cids[i])
	}
}

func TestUploadManyAbortsOnFailure(t *testing.T) {
	store := NewInMemoryStore()
	files := []File{
		{Name: "ok", Data: []byte("aaa")},
		{Name: "empty"},
	}

	_, err := store.UploadMany(context.Background(), files)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestFetch(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	cid, err := store.Upload(ctx, File{Name: "doc", Data: []byte("hello")})
	require.NoError(t, err)

	got, err := store.Fetch(ctx, cid)
	require.NoError(t, err)
	assert.Equal(t, "doc", got.Name)

	_, err = store.Fetch(ctx, "unknown-cid")
	assert.ErrorIs(t, err, ErrNotFound)
}
