package omf

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for archive storage backends.
type BlobStore interface {
	// Upload stores the bytes under objectKey.
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download streams the bytes stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the bytes stored under objectKey.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// GetUploadURL returns a URL for uploading directly to the backend.
	GetUploadURL(ctx context.Context, objectKey string) (string, error)

	// GetDownloadURL returns a URL for downloading directly from the
	// backend, with an optional download filename hint.
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)
}

// ObjectMeta contains metadata about an object in storage.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// Repository defines the interface for catalog persistence.
type Repository interface {
	// Project record operations
	CreateProject(ctx context.Context, record *ProjectRecord) error
	GetProject(ctx context.Context, id uuid.UUID) (*ProjectRecord, error)
	UpdateProject(ctx context.Context, record *ProjectRecord) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ListProjects(ctx context.Context, filters ProjectListFilters) ([]*ProjectRecord, error)

	// Element summary operations
	ReplaceElementSummaries(ctx context.Context, projectID uuid.UUID, summaries []*ElementSummary) error
	ListElementSummaries(ctx context.Context, projectID uuid.UUID) ([]*ElementSummary, error)

	// Aggregations
	CountProjectsByStatus(ctx context.Context) (map[string]int64, error)
	CountElementsBySchema(ctx context.Context) (map[string]int64, error)
	SumArchiveSizes(ctx context.Context) (int64, error)
}

// Packer serializes projects to and from the archive format. The omffile
// subpackage provides the standard .omf implementation.
type Packer interface {
	// Pack validates the project and writes the archive to w.
	Pack(ctx context.Context, p *Project, w io.Writer) error

	// Unpack reads an archive and restores the project with all payloads
	// attached.
	Unpack(ctx context.Context, r io.ReaderAt, size int64) (*Project, error)
}

// EventSink defines the interface for catalog lifecycle event handling.
type EventSink interface {
	// ProjectCreated is fired when a project record is created
	ProjectCreated(ctx context.Context, record *ProjectRecord) error

	// ProjectUpdated is fired when a project record is updated
	ProjectUpdated(ctx context.Context, record *ProjectRecord) error

	// ProjectStored is fired when a project archive is packed and uploaded
	ProjectStored(ctx context.Context, record *ProjectRecord) error

	// ProjectDeleted is fired when a project is deleted
	ProjectDeleted(ctx context.Context, projectID uuid.UUID) error
}
