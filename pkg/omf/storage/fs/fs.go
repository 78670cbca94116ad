package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/openmining/omf/pkg/omf"
)

// Backend is a filesystem implementation of the omf.BlobStore interface.
// Archives are written atomically, so a crash mid-upload never leaves a
// truncated archive under its final key.
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing archives
	URLPrefix string // Optional URL prefix for download/upload URLs
}

// New creates a new filesystem storage backend
func New(config Config) (omf.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: config.URLPrefix,
	}, nil
}

// Upload writes archive bytes to the filesystem atomically
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(filePath)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, reader); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// Download opens an archive file for reading
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, omf.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return file, nil
}

// Delete removes an archive file and any directories it leaves empty
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return omf.ErrObjectNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// GetObjectMeta retrieves metadata for an archive on the filesystem
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*omf.ObjectMeta, error) {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, omf.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return &omf.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: "application/zip",
		UpdatedAt:   info.ModTime(),
	}, nil
}

// GetUploadURL returns a URL for uploading an archive
func (b *Backend) GetUploadURL(ctx context.Context, objectKey string) (string, error) {
	if b.urlPrefix == "" {
		return "", errors.New("direct upload required for filesystem backend")
	}
	return fmt.Sprintf("%s/upload/%s", b.urlPrefix, objectKey), nil
}

// GetDownloadURL returns a URL for downloading an archive
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	if b.urlPrefix == "" {
		return "", errors.New("direct download required for filesystem backend")
	}

	if downloadFilename != "" {
		return fmt.Sprintf("%s/download/%s?filename=%s", b.urlPrefix, objectKey, url.QueryEscape(downloadFilename)), nil
	}
	return fmt.Sprintf("%s/download/%s", b.urlPrefix, objectKey), nil
}

func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
