package omf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyGenerator produces blob store object keys for project archives. The
// objectkey subpackage provides the standard strategies.
type KeyGenerator interface {
	GenerateKey(projectID uuid.UUID, name string) string
}

// service implements the Service interface.
type service struct {
	repository     Repository
	blobStores     map[string]BlobStore
	packer         Packer
	eventSink      EventSink
	keyGenerator   KeyGenerator
	defaultBackend string
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithRepository sets the repository for the service.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend under a name.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
	}
}

// WithPacker sets the archive packer for the service.
func WithPacker(p Packer) Option {
	return func(s *service) {
		s.packer = p
	}
}

// WithEventSink sets the event sink for the service.
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithKeyGenerator sets the object key generation strategy.
func WithKeyGenerator(gen KeyGenerator) Option {
	return func(s *service) {
		s.keyGenerator = gen
	}
}

// WithDefaultBackend sets the backend used when a project record does not
// name one.
func WithDefaultBackend(name string) Option {
	return func(s *service) {
		s.defaultBackend = name
	}
}

// New creates a new catalog service instance with the given options.
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[string]BlobStore),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.keyGenerator == nil {
		s.keyGenerator = defaultKeyGenerator{}
	}

	return s, nil
}

// defaultKeyGenerator shards archives by the first two characters of the
// project UUID.
type defaultKeyGenerator struct{}

func (defaultKeyGenerator) GenerateKey(projectID uuid.UUID, name string) string {
	id := strings.ReplaceAll(projectID.String(), "-", "")
	return fmt.Sprintf("projects/%s/%s.omf", id[:2], id)
}

// Project record operations

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectRecord, error) {
	now := time.Now().UTC()
	record := &ProjectRecord{
		ID:                        uuid.New(),
		Name:                      req.Name,
		Description:               req.Description,
		Author:                    req.Author,
		CoordinateReferenceSystem: req.CoordinateReferenceSystem,
		Status:                    string(ProjectStatusCreated),
		StorageBackendName:        req.StorageBackendName,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.repository.CreateProject(ctx, record); err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "create", Err: err}
	}

	if err := s.eventSink.ProjectCreated(ctx, record); err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "create event", Err: err}
	}

	return record, nil
}

func (s *service) GetProject(ctx context.Context, id uuid.UUID) (*ProjectRecord, error) {
	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "get", Err: err}
	}
	return record, nil
}

func (s *service) UpdateProject(ctx context.Context, req UpdateProjectRequest) error {
	if req.Record == nil {
		return fmt.Errorf("record is required")
	}
	req.Record.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateProject(ctx, req.Record); err != nil {
		return &ProjectError{ProjectID: req.Record.ID, Op: "update", Err: err}
	}

	if err := s.eventSink.ProjectUpdated(ctx, req.Record); err != nil {
		return &ProjectError{ProjectID: req.Record.ID, Op: "update event", Err: err}
	}

	return nil
}

func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return &ProjectError{ProjectID: id, Op: "delete", Err: err}
	}

	// Remove the packed archive before the record so a failed blob delete
	// leaves the record pointing at the archive.
	if record.ObjectKey != "" && record.StorageBackendName != "" {
		backend, err := s.GetBackend(record.StorageBackendName)
		if err != nil {
			return &ProjectError{ProjectID: id, Op: "delete", Err: err}
		}
		if err := backend.Delete(ctx, record.ObjectKey); err != nil {
			return &StorageError{Backend: record.StorageBackendName, Key: record.ObjectKey, Op: "delete", Err: err}
		}
	}

	if err := s.repository.DeleteProject(ctx, id); err != nil {
		return &ProjectError{ProjectID: id, Op: "delete", Err: err}
	}

	if err := s.eventSink.ProjectDeleted(ctx, id); err != nil {
		return &ProjectError{ProjectID: id, Op: "delete event", Err: err}
	}

	return nil
}

func (s *service) ListProjects(ctx context.Context, req ListProjectsRequest) ([]*ProjectRecord, error) {
	return s.repository.ListProjects(ctx, req.Filters)
}

// Archive operations

func (s *service) StoreProject(ctx context.Context, req StoreProjectRequest) (*ProjectRecord, error) {
	if req.Project == nil {
		return nil, fmt.Errorf("project is required")
	}
	if s.packer == nil {
		return nil, &ProjectError{ProjectID: req.ProjectID, Op: "store", Err: ErrNoPacker}
	}

	record, err := s.repository.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &ProjectError{ProjectID: req.ProjectID, Op: "store", Err: err}
	}

	req.Project.Metadata = req.Project.Metadata.Touch(time.Now())

	var buf bytes.Buffer
	if err := s.packer.Pack(ctx, req.Project, &buf); err != nil {
		return nil, &ProjectError{ProjectID: req.ProjectID, Op: "pack", Err: err}
	}

	return s.storeArchive(ctx, record, req.StorageBackendName, buf.Bytes(), req.Project)
}

func (s *service) FetchProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	if s.packer == nil {
		return nil, &ProjectError{ProjectID: id, Op: "fetch", Err: ErrNoPacker}
	}

	reader, err := s.DownloadArchive(ctx, id)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "fetch", Err: err}
	}

	project, err := s.packer.Unpack(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "unpack", Err: err}
	}
	return project, nil
}

func (s *service) UploadArchive(ctx context.Context, id uuid.UUID, reader io.Reader) (*ProjectRecord, error) {
	if s.packer == nil {
		return nil, &ProjectError{ProjectID: id, Op: "upload", Err: ErrNoPacker}
	}

	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "upload", Err: err}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "upload", Err: err}
	}

	// Parse before storing so the catalog never holds archives it cannot
	// read back.
	project, err := s.packer.Unpack(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "upload", Err: err}
	}

	return s.storeArchive(ctx, record, "", data, project)
}

// storeArchive uploads packed archive bytes, updates the record and
// replaces the element summaries.
func (s *service) storeArchive(ctx context.Context, record *ProjectRecord, backendOverride string, data []byte, project *Project) (*ProjectRecord, error) {
	backendName := backendOverride
	if backendName == "" {
		backendName = record.StorageBackendName
	}
	if backendName == "" {
		backendName = s.defaultBackend
	}
	backend, err := s.GetBackend(backendName)
	if err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "store", Err: err}
	}

	objectKey := record.ObjectKey
	if objectKey == "" {
		objectKey = s.keyGenerator.GenerateKey(record.ID, record.Name)
	}

	if err := backend.Upload(ctx, objectKey, bytes.NewReader(data)); err != nil {
		return nil, &StorageError{Backend: backendName, Key: objectKey, Op: "upload", Err: err}
	}

	sum := sha256.Sum256(data)
	now := time.Now().UTC()
	record.Status = string(ProjectStatusPacked)
	record.StorageBackendName = backendName
	record.ObjectKey = objectKey
	record.ElementCount = len(project.Elements)
	record.SizeBytes = int64(len(data))
	record.Checksum = "sha256:" + hex.EncodeToString(sum[:])
	record.UpdatedAt = now

	if err := s.repository.UpdateProject(ctx, record); err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "store", Err: err}
	}

	if err := s.repository.ReplaceElementSummaries(ctx, record.ID, summarizeElements(record.ID, project, now)); err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "store summaries", Err: err}
	}

	if err := s.eventSink.ProjectStored(ctx, record); err != nil {
		return nil, &ProjectError{ProjectID: record.ID, Op: "store event", Err: err}
	}

	return record, nil
}

func (s *service) DownloadArchive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "download", Err: err}
	}
	if record.Status != string(ProjectStatusPacked) || record.ObjectKey == "" {
		return nil, &ProjectError{ProjectID: id, Op: "download", Err: ErrProjectNotPacked}
	}

	backend, err := s.GetBackend(record.StorageBackendName)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Op: "download", Err: err}
	}

	reader, err := backend.Download(ctx, record.ObjectKey)
	if err != nil {
		return nil, &StorageError{Backend: record.StorageBackendName, Key: record.ObjectKey, Op: "download", Err: err}
	}
	return reader, nil
}

func (s *service) GetArchiveUploadURL(ctx context.Context, id uuid.UUID) (string, error) {
	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return "", &ProjectError{ProjectID: id, Op: "upload url", Err: err}
	}

	backendName := record.StorageBackendName
	if backendName == "" {
		backendName = s.defaultBackend
	}
	backend, err := s.GetBackend(backendName)
	if err != nil {
		return "", &ProjectError{ProjectID: id, Op: "upload url", Err: err}
	}

	if record.ObjectKey == "" {
		record.ObjectKey = s.keyGenerator.GenerateKey(record.ID, record.Name)
		record.StorageBackendName = backendName
		record.UpdatedAt = time.Now().UTC()
		if err := s.repository.UpdateProject(ctx, record); err != nil {
			return "", &ProjectError{ProjectID: id, Op: "upload url", Err: err}
		}
	}

	return backend.GetUploadURL(ctx, record.ObjectKey)
}

func (s *service) GetArchiveDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	record, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return "", &ProjectError{ProjectID: id, Op: "download url", Err: err}
	}
	if record.Status != string(ProjectStatusPacked) || record.ObjectKey == "" {
		return "", &ProjectError{ProjectID: id, Op: "download url", Err: ErrProjectNotPacked}
	}

	backend, err := s.GetBackend(record.StorageBackendName)
	if err != nil {
		return "", &ProjectError{ProjectID: id, Op: "download url", Err: err}
	}

	filename := record.Name
	if filename == "" {
		filename = record.ID.String()
	}
	return backend.GetDownloadURL(ctx, record.ObjectKey, filename+".omf")
}

// Element browsing

func (s *service) ListElements(ctx context.Context, projectID uuid.UUID) ([]*ElementSummary, error) {
	if _, err := s.repository.GetProject(ctx, projectID); err != nil {
		return nil, &ProjectError{ProjectID: projectID, Op: "list elements", Err: err}
	}
	return s.repository.ListElementSummaries(ctx, projectID)
}

// Aggregations

func (s *service) GetStatistics(ctx context.Context) (*Statistics, error) {
	byStatus, err := s.repository.CountProjectsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	bySchema, err := s.repository.CountElementsBySchema(ctx)
	if err != nil {
		return nil, err
	}
	totalSize, err := s.repository.SumArchiveSizes(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalSizeBytes:  totalSize,
		ByStatus:        byStatus,
		ByElementSchema: bySchema,
	}
	for _, count := range byStatus {
		stats.TotalProjects += count
	}
	return stats, nil
}

// Storage backend operations

func (s *service) RegisterBackend(name string, backend BlobStore) {
	s.blobStores[name] = backend
}

func (s *service) GetBackend(name string) (BlobStore, error) {
	backend, ok := s.blobStores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	return backend, nil
}
