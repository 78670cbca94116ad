package omf

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the domain type for catalog project lifecycle states.
type ProjectStatus string

// Project status constants (typed).
const (
	ProjectStatusCreated ProjectStatus = "created"
	ProjectStatusPacked  ProjectStatus = "packed"
	ProjectStatusDeleted ProjectStatus = "deleted"
)

// ProjectRecord is the catalog entity for a stored project. The element
// tree itself lives in a packed archive in a blob store; the record carries
// the identifying fields and archive bookkeeping.
type ProjectRecord struct {
	ID                        uuid.UUID  `json:"id"`
	Name                      string     `json:"name"`
	Description               string     `json:"description,omitempty"`
	Author                    string     `json:"author,omitempty"`
	CoordinateReferenceSystem string     `json:"coordinate_reference_system,omitempty"`
	Status                    string     `json:"status"`
	StorageBackendName        string     `json:"storage_backend_name,omitempty"`
	ObjectKey                 string     `json:"object_key,omitempty"`
	ElementCount              int        `json:"element_count"`
	SizeBytes                 int64      `json:"size_bytes,omitempty"`
	Checksum                  string     `json:"checksum,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
	DeletedAt                 *time.Time `json:"deleted_at,omitempty"`
}

// ElementSummary is a per-element catalog row recorded when a project is
// stored, so clients can browse elements without unpacking archives.
type ElementSummary struct {
	ID             uuid.UUID      `json:"id"`
	ProjectID      uuid.UUID      `json:"project_id"`
	Name           string         `json:"name"`
	Schema         string         `json:"schema"`
	AttributeCount int            `json:"attribute_count"`
	Locations      map[string]int `json:"locations"`
	CreatedAt      time.Time      `json:"created_at"`
}

// summarizeElements builds catalog rows from a project's element tree.
func summarizeElements(projectID uuid.UUID, p *Project, now time.Time) []*ElementSummary {
	out := make([]*ElementSummary, 0, len(p.Elements))
	for _, e := range p.Elements {
		locations := make(map[string]int)
		for _, loc := range e.ValidLocations() {
			locations[string(loc)] = e.LocationLength(loc)
		}
		out = append(out, &ElementSummary{
			ID:             uuid.New(),
			ProjectID:      projectID,
			Name:           e.Base().Name,
			Schema:         e.Schema(),
			AttributeCount: len(e.Base().Attributes),
			Locations:      locations,
			CreatedAt:      now,
		})
	}
	return out
}

// ProjectListFilters defines filtering options for listing catalog projects.
type ProjectListFilters struct {
	Author         *string
	Status         *string
	Statuses       []string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	Limit          *int
	Offset         *int
	IncludeDeleted bool
}

// Statistics contains aggregated catalog counts.
type Statistics struct {
	TotalProjects   int64            `json:"total_projects"`
	TotalSizeBytes  int64            `json:"total_size_bytes"`
	ByStatus        map[string]int64 `json:"by_status,omitempty"`
	ByElementSchema map[string]int64 `json:"by_element_schema,omitempty"`
}
