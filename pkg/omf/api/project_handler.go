package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/openmining/omf/pkg/omf"
)

// ProjectHandler handles HTTP requests for catalog projects
type ProjectHandler struct {
	service omf.Service
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service omf.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Routes returns the routes for projects
func (h *ProjectHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateProject)
	r.Get("/", h.ListProjects)
	r.Get("/{id}", h.GetProject)
	r.Put("/{id}", h.UpdateProject)
	r.Delete("/{id}", h.DeleteProject)

	r.Get("/{id}/elements", h.ListElements)

	// Archive transport
	r.Post("/{id}/archive", h.UploadArchive)
	r.Get("/{id}/archive", h.DownloadArchive)
	r.Get("/{id}/archive/upload-url", h.GetArchiveUploadURL)
	r.Get("/{id}/archive/download-url", h.GetArchiveDownloadURL)

	return r
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Name                      string `json:"name"`
	Description               string `json:"description,omitempty"`
	Author                    string `json:"author,omitempty"`
	CoordinateReferenceSystem string `json:"coordinate_reference_system,omitempty"`
	StorageBackendName        string `json:"storage_backend_name,omitempty"`
}

// ProjectResponse is the response body for a project
type ProjectResponse struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Description               string    `json:"description,omitempty"`
	Author                    string    `json:"author,omitempty"`
	CoordinateReferenceSystem string    `json:"coordinate_reference_system,omitempty"`
	Status                    string    `json:"status"`
	StorageBackendName        string    `json:"storage_backend_name,omitempty"`
	ElementCount              int       `json:"element_count"`
	SizeBytes                 int64     `json:"size_bytes,omitempty"`
	Checksum                  string    `json:"checksum,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func toProjectResponse(record *omf.ProjectRecord) ProjectResponse {
	return ProjectResponse{
		ID:                        record.ID.String(),
		Name:                      record.Name,
		Description:               record.Description,
		Author:                    record.Author,
		CoordinateReferenceSystem: record.CoordinateReferenceSystem,
		Status:                    record.Status,
		StorageBackendName:        record.StorageBackendName,
		ElementCount:              record.ElementCount,
		SizeBytes:                 record.SizeBytes,
		Checksum:                  record.Checksum,
		CreatedAt:                 record.CreatedAt,
		UpdatedAt:                 record.UpdatedAt,
	}
}

// CreateProject creates a new catalog project
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	record, err := h.service.CreateProject(r.Context(), omf.CreateProjectRequest{
		Name:                      req.Name,
		Description:               req.Description,
		Author:                    req.Author,
		CoordinateReferenceSystem: req.CoordinateReferenceSystem,
		StorageBackendName:        req.StorageBackendName,
	})
	if err != nil {
		slog.Error("Failed to create project", "error", err)
		writeServiceError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toProjectResponse(record))
}

// GetProject returns a single project record
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, toProjectResponse(record))
}

// UpdateProjectRequest is the request body for updating a project
type UpdateProjectRequest struct {
	Name                      *string `json:"name,omitempty"`
	Description               *string `json:"description,omitempty"`
	Author                    *string `json:"author,omitempty"`
	CoordinateReferenceSystem *string `json:"coordinate_reference_system,omitempty"`
}

// UpdateProject applies partial updates to a project record
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Name != nil {
		record.Name = *req.Name
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Author != nil {
		record.Author = *req.Author
	}
	if req.CoordinateReferenceSystem != nil {
		record.CoordinateReferenceSystem = *req.CoordinateReferenceSystem
	}

	if err := h.service.UpdateProject(r.Context(), omf.UpdateProjectRequest{Record: record}); err != nil {
		slog.Error("Failed to update project", "project_id", id, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, toProjectResponse(record))
}

// DeleteProject removes a project and its stored archive
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		slog.Error("Failed to delete project", "project_id", id, "error", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProjects returns project records matching the query filters
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var filters omf.ProjectListFilters

	q := r.URL.Query()
	if author := q.Get("author"); author != "" {
		filters.Author = &author
	}
	if status := q.Get("status"); status != "" {
		filters.Status = &status
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filters.Limit = &limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		filters.Offset = &offset
	}

	records, err := h.service.ListProjects(r.Context(), omf.ListProjectsRequest{Filters: filters})
	if err != nil {
		slog.Error("Failed to list projects", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]ProjectResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toProjectResponse(record))
	}

	render.JSON(w, r, resp)
}

// ListElements returns the element summaries recorded for a project
func (h *ProjectHandler) ListElements(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	summaries, err := h.service.ListElements(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []*omf.ElementSummary{}
	}

	render.JSON(w, r, summaries)
}

// UploadArchive stores the request body as the project's archive
func (h *ProjectHandler) UploadArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := h.service.UploadArchive(r.Context(), id, r.Body)
	if err != nil {
		slog.Error("Failed to upload archive", "project_id", id, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, toProjectResponse(record))
}

// DownloadArchive streams the project's stored archive
func (h *ProjectHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	reader, err := h.service.DownloadArchive(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id.String()+`.omf"`)
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("Failed to stream archive", "project_id", id, "error", err)
	}
}

// GetArchiveUploadURL returns a URL for uploading an archive directly to
// the storage backend
func (h *ProjectHandler) GetArchiveUploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	url, err := h.service.GetArchiveUploadURL(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, map[string]string{"upload_url": url})
}

// GetArchiveDownloadURL returns a URL for downloading an archive directly
// from the storage backend
func (h *ProjectHandler) GetArchiveDownloadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	url, err := h.service.GetArchiveDownloadURL(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, map[string]string{"download_url": url})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, omf.ErrProjectNotFound), errors.Is(err, omf.ErrObjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, omf.ErrProjectNotPacked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, omf.ErrBackendNotFound), errors.Is(err, omf.ErrNoPacker):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var validationErr *omf.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
