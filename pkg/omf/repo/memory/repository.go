package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openmining/omf/pkg/omf"
)

// Repository implements omf.Repository using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	projects  map[uuid.UUID]*omf.ProjectRecord
	summaries map[uuid.UUID][]*omf.ElementSummary // project_id -> summaries
}

// New creates a new in-memory repository
func New() omf.Repository {
	return &Repository{
		projects:  make(map[uuid.UUID]*omf.ProjectRecord),
		summaries: make(map[uuid.UUID][]*omf.ElementSummary),
	}
}

// Project record operations

func (r *Repository) CreateProject(ctx context.Context, record *omf.ProjectRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	recordCopy := *record
	r.projects[record.ID] = &recordCopy

	return nil
}

func (r *Repository) GetProject(ctx context.Context, id uuid.UUID) (*omf.ProjectRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.projects[id]
	if !exists || record.DeletedAt != nil {
		return nil, omf.ErrProjectNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (r *Repository) UpdateProject(ctx context.Context, record *omf.ProjectRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.projects[record.ID]
	if !exists || existing.DeletedAt != nil {
		return omf.ErrProjectNotFound
	}

	recordCopy := *record
	r.projects[record.ID] = &recordCopy

	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.projects[id]
	if !exists || record.DeletedAt != nil {
		return omf.ErrProjectNotFound
	}

	// Soft delete; the record stays for statistics until compaction
	now := time.Now().UTC()
	record.Status = string(omf.ProjectStatusDeleted)
	record.DeletedAt = &now
	record.UpdatedAt = now
	delete(r.summaries, id)

	return nil
}

func (r *Repository) ListProjects(ctx context.Context, filters omf.ProjectListFilters) ([]*omf.ProjectRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*omf.ProjectRecord
	for _, record := range r.projects {
		if !matches(record, filters) {
			continue
		}
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	offset := 0
	if filters.Offset != nil && *filters.Offset > 0 {
		offset = *filters.Offset
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]

	if filters.Limit != nil && *filters.Limit >= 0 && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	return result, nil
}

func matches(record *omf.ProjectRecord, filters omf.ProjectListFilters) bool {
	if record.DeletedAt != nil && !filters.IncludeDeleted {
		return false
	}
	if filters.Author != nil && record.Author != *filters.Author {
		return false
	}
	if filters.Status != nil && record.Status != *filters.Status {
		return false
	}
	if len(filters.Statuses) > 0 {
		found := false
		for _, s := range filters.Statuses {
			if record.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.CreatedAfter != nil && record.CreatedAt.Before(*filters.CreatedAfter) {
		return false
	}
	if filters.CreatedBefore != nil && record.CreatedAt.After(*filters.CreatedBefore) {
		return false
	}
	return true
}

// Element summary operations

func (r *Repository) ReplaceElementSummaries(ctx context.Context, projectID uuid.UUID, summaries []*omf.ElementSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, exists := r.projects[projectID]; !exists || record.DeletedAt != nil {
		return omf.ErrProjectNotFound
	}

	copies := make([]*omf.ElementSummary, len(summaries))
	for i, s := range summaries {
		summaryCopy := *s
		copies[i] = &summaryCopy
	}
	r.summaries[projectID] = copies

	return nil
}

func (r *Repository) ListElementSummaries(ctx context.Context, projectID uuid.UUID) ([]*omf.ElementSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if record, exists := r.projects[projectID]; !exists || record.DeletedAt != nil {
		return nil, omf.ErrProjectNotFound
	}

	summaries := r.summaries[projectID]
	result := make([]*omf.ElementSummary, len(summaries))
	for i, s := range summaries {
		summaryCopy := *s
		result[i] = &summaryCopy
	}

	return result, nil
}

// Aggregations

func (r *Repository) CountProjectsByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, record := range r.projects {
		counts[record.Status]++
	}
	return counts, nil
}

func (r *Repository) CountElementsBySchema(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for projectID, summaries := range r.summaries {
		if record, exists := r.projects[projectID]; !exists || record.DeletedAt != nil {
			continue
		}
		for _, s := range summaries {
			counts[s.Schema]++
		}
	}
	return counts, nil
}

func (r *Repository) SumArchiveSizes(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, record := range r.projects {
		if record.DeletedAt != nil {
			continue
		}
		total += record.SizeBytes
	}
	return total, nil
}
