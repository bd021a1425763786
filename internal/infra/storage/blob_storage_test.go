package storage

import (
	"context"
	"testing"

	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func TestBlobStorage_RoundTrip(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	storage := NewBlobStorage(bucket)
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, "products/comet.png", []byte("png-bytes"), "image/png"))

	data, err := storage.Get(ctx, "products/comet.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, storage.Delete(ctx, "products/comet.png"))
	_, err = storage.Get(ctx, "products/comet.png")
	assert.True(t, errors.Is(err, domainerrors.ErrImageNotFound))
}

func TestBlobStorage_DeleteMissing(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	assert.NoError(t, NewBlobStorage(bucket).Delete(context.Background(), "missing"))
}
