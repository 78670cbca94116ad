package memory_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
	"github.com/openmining/omf/pkg/omf/storage/memory"
)

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	archive := []byte("packed archive bytes")
	require.NoError(t, store.Upload(ctx, "projects/ab/abc.omf", bytes.NewReader(archive)))

	reader, err := store.Download(ctx, "projects/ab/abc.omf")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, archive, data)

	require.NoError(t, store.Delete(ctx, "projects/ab/abc.omf"))

	_, err = store.Download(ctx, "projects/ab/abc.omf")
	assert.ErrorIs(t, err, omf.ErrObjectNotFound)
}

func TestUploadOverwrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Upload(ctx, "key", bytes.NewReader([]byte("v1"))))
	require.NoError(t, store.Upload(ctx, "key", bytes.NewReader([]byte("v2"))))

	reader, err := store.Download(ctx, "key")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestGetObjectMeta(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := store.GetObjectMeta(ctx, "absent")
	assert.ErrorIs(t, err, omf.ErrObjectNotFound)

	require.NoError(t, store.Upload(ctx, "key", bytes.NewReader([]byte("12345"))))

	meta, err := store.GetObjectMeta(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "key", meta.Key)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, "application/zip", meta.ContentType)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestDeleteMissing(t *testing.T) {
	store := memory.New()
	err := store.Delete(context.Background(), "absent")
	assert.ErrorIs(t, err, omf.ErrObjectNotFound)
}

func TestNoURLSurface(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := store.GetUploadURL(ctx, "key")
	assert.Error(t, err)

	_, err = store.GetDownloadURL(ctx, "key", "file.omf")
	assert.Error(t, err)
}
