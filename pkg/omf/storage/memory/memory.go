package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/openmining/omf/pkg/omf"
)

// Backend is an in-memory implementation of the omf.BlobStore interface.
// Archives live in a map for the lifetime of the process; intended for
// tests and single-shot tooling.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data      []byte
	updatedAt time.Time
}

// New creates a new in-memory storage backend
func New() omf.BlobStore {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Upload stores archive bytes in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = object{data: data, updatedAt: time.Now().UTC()}
	return nil
}

// Download streams archive bytes from memory
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, omf.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes an archive from memory
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return omf.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	return nil
}

// GetObjectMeta retrieves metadata for an archive in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*omf.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, omf.ErrObjectNotFound
	}

	return &omf.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: "application/zip",
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// GetUploadURL returns an error; the memory backend has no URL surface
func (b *Backend) GetUploadURL(ctx context.Context, objectKey string) (string, error) {
	return "", errors.New("direct upload required for memory backend")
}

// GetDownloadURL returns an error; the memory backend has no URL surface
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	return "", errors.New("direct download required for memory backend")
}
