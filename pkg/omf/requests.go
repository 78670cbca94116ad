package omf

import "github.com/google/uuid"

// Request DTOs for the catalog service.

// CreateProjectRequest contains parameters for creating a project record.
type CreateProjectRequest struct {
	Name                      string
	Description               string
	Author                    string
	CoordinateReferenceSystem string
	StorageBackendName        string
}

// UpdateProjectRequest contains parameters for updating a project record.
type UpdateProjectRequest struct {
	Record *ProjectRecord
}

// ListProjectsRequest contains parameters for listing project records.
type ListProjectsRequest struct {
	Filters ProjectListFilters
}

// StoreProjectRequest contains parameters for packing and storing a
// project's element tree.
type StoreProjectRequest struct {
	ProjectID uuid.UUID
	Project   *Project

	// StorageBackendName overrides the backend recorded at creation time
	// when set.
	StorageBackendName string
}
