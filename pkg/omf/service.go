package omf

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the catalog interface: project records behind a
// repository, packed archives behind blob storage backends.
type Service interface {
	// Project record operations
	CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectRecord, error)
	GetProject(ctx context.Context, id uuid.UUID) (*ProjectRecord, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ListProjects(ctx context.Context, req ListProjectsRequest) ([]*ProjectRecord, error)

	// Archive operations
	StoreProject(ctx context.Context, req StoreProjectRequest) (*ProjectRecord, error)
	FetchProject(ctx context.Context, id uuid.UUID) (*Project, error)
	UploadArchive(ctx context.Context, id uuid.UUID, reader io.Reader) (*ProjectRecord, error)
	DownloadArchive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	GetArchiveUploadURL(ctx context.Context, id uuid.UUID) (string, error)
	GetArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error)

	// Element browsing
	ListElements(ctx context.Context, projectID uuid.UUID) ([]*ElementSummary, error)

	// Aggregations
	GetStatistics(ctx context.Context) (*Statistics, error)

	// Storage backend operations
	RegisterBackend(name string, backend BlobStore)
	GetBackend(name string) (BlobStore, error)
}
