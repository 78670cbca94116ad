package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmining/omf/pkg/omf"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements omf.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) omf.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) omf.Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("project already exists")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return omf.ErrProjectNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Project record operations

func (r *Repository) CreateProject(ctx context.Context, record *omf.ProjectRecord) error {
	query := `
		INSERT INTO omf.projects (
			id, name, description, author, coordinate_reference_system,
			status, storage_backend_name, object_key, element_count,
			size_bytes, checksum, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.Name, record.Description, record.Author,
		record.CoordinateReferenceSystem, record.Status,
		record.StorageBackendName, record.ObjectKey, record.ElementCount,
		record.SizeBytes, record.Checksum, record.CreatedAt, record.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create project", err)
	}

	return nil
}

const projectColumns = `
	id, name, description, author, coordinate_reference_system,
	status, storage_backend_name, object_key, element_count,
	size_bytes, checksum, created_at, updated_at, deleted_at`

func scanProject(row pgx.Row) (*omf.ProjectRecord, error) {
	var record omf.ProjectRecord
	err := row.Scan(
		&record.ID, &record.Name, &record.Description, &record.Author,
		&record.CoordinateReferenceSystem, &record.Status,
		&record.StorageBackendName, &record.ObjectKey, &record.ElementCount,
		&record.SizeBytes, &record.Checksum, &record.CreatedAt,
		&record.UpdatedAt, &record.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) GetProject(ctx context.Context, id uuid.UUID) (*omf.ProjectRecord, error) {
	query := `SELECT` + projectColumns + `
		FROM omf.projects WHERE id = $1 AND deleted_at IS NULL`

	record, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, omf.ErrProjectNotFound
		}
		return nil, r.handlePostgresError("get project", err)
	}

	return record, nil
}

func (r *Repository) UpdateProject(ctx context.Context, record *omf.ProjectRecord) error {
	query := `
		UPDATE omf.projects SET
			name = $2, description = $3, author = $4,
			coordinate_reference_system = $5, status = $6,
			storage_backend_name = $7, object_key = $8, element_count = $9,
			size_bytes = $10, checksum = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		record.ID, record.Name, record.Description, record.Author,
		record.CoordinateReferenceSystem, record.Status,
		record.StorageBackendName, record.ObjectKey, record.ElementCount,
		record.SizeBytes, record.Checksum, record.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("update project", err)
	}
	if tag.RowsAffected() == 0 {
		return omf.ErrProjectNotFound
	}

	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	// Soft delete; element summaries are removed so schema counts only
	// cover live projects
	query := `
		UPDATE omf.projects
		SET status = $2, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, string(omf.ProjectStatusDeleted))
	if err != nil {
		return r.handlePostgresError("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return omf.ErrProjectNotFound
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM omf.project_elements WHERE project_id = $1`, id); err != nil {
		return r.handlePostgresError("delete project elements", err)
	}

	return nil
}

func (r *Repository) ListProjects(ctx context.Context, filters omf.ProjectListFilters) ([]*omf.ProjectRecord, error) {
	query := `SELECT` + projectColumns + ` FROM omf.projects`

	var conditions []string
	var args []interface{}

	if !filters.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filters.Author != nil {
		args = append(args, *filters.Author)
		conditions = append(conditions, fmt.Sprintf("author = $%d", len(args)))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(filters.Statuses) > 0 {
		args = append(args, filters.Statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filters.CreatedAfter != nil {
		args = append(args, *filters.CreatedAfter)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filters.CreatedBefore != nil {
		args = append(args, *filters.CreatedBefore)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filters.Limit != nil {
		args = append(args, *filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset != nil {
		args = append(args, *filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list projects", err)
	}
	defer rows.Close()

	var records []*omf.ProjectRecord
	for rows.Next() {
		record, err := scanProject(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan project", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Element summary operations

func (r *Repository) ReplaceElementSummaries(ctx context.Context, projectID uuid.UUID, summaries []*omf.ElementSummary) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM omf.project_elements WHERE project_id = $1`, projectID); err != nil {
		return r.handlePostgresError("replace element summaries", err)
	}

	query := `
		INSERT INTO omf.project_elements (
			id, project_id, name, schema, attribute_count, locations, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, s := range summaries {
		_, err := r.db.Exec(ctx, query,
			s.ID, projectID, s.Name, s.Schema, s.AttributeCount,
			s.Locations, s.CreatedAt)
		if err != nil {
			return r.handlePostgresError("insert element summary", err)
		}
	}

	return nil
}

func (r *Repository) ListElementSummaries(ctx context.Context, projectID uuid.UUID) ([]*omf.ElementSummary, error) {
	query := `
		SELECT id, project_id, name, schema, attribute_count, locations, created_at
		FROM omf.project_elements
		WHERE project_id = $1
		ORDER BY created_at, name`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, r.handlePostgresError("list element summaries", err)
	}
	defer rows.Close()

	var summaries []*omf.ElementSummary
	for rows.Next() {
		var s omf.ElementSummary
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Schema,
			&s.AttributeCount, &s.Locations, &s.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan element summary", err)
		}
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// Aggregations

func (r *Repository) CountProjectsByStatus(ctx context.Context) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM omf.projects GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("count projects by status", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, r.handlePostgresError("scan status count", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *Repository) CountElementsBySchema(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT e.schema, COUNT(*)
		FROM omf.project_elements e
		JOIN omf.projects p ON p.id = e.project_id
		WHERE p.deleted_at IS NULL
		GROUP BY e.schema`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("count elements by schema", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var schema string
		var count int64
		if err := rows.Scan(&schema, &count); err != nil {
			return nil, r.handlePostgresError("scan schema count", err)
		}
		counts[schema] = count
	}

	return counts, rows.Err()
}

func (r *Repository) SumArchiveSizes(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM omf.projects WHERE deleted_at IS NULL`

	var total int64
	if err := r.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, r.handlePostgresError("sum archive sizes", err)
	}

	return total, nil
}
