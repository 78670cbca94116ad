package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/openmining/omf/pkg/omf"
)

// NewRouter builds the catalog HTTP API.
//
// Routes:
//
//	GET  /health                                     - Health check
//	GET  /api/v1/statistics                          - Catalog statistics
//	POST /api/v1/projects                            - Create project
//	GET  /api/v1/projects                            - List projects
//	GET  /api/v1/projects/{id}                       - Get project
//	PUT  /api/v1/projects/{id}                       - Update project
//	DELETE /api/v1/projects/{id}                     - Delete project
//	GET  /api/v1/projects/{id}/elements              - List element summaries
//	POST /api/v1/projects/{id}/archive               - Upload archive
//	GET  /api/v1/projects/{id}/archive               - Download archive
//	GET  /api/v1/projects/{id}/archive/upload-url    - Presigned upload URL
//	GET  /api/v1/projects/{id}/archive/download-url  - Presigned download URL
func NewRouter(service omf.Service) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/projects", NewProjectHandler(service).Routes())
		r.Get("/statistics", statisticsHandler(service))
	})

	return r
}

func statisticsHandler(service omf.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := service.GetStatistics(r.Context())
		if err != nil {
			slog.Error("Failed to compute statistics", "error", err)
			writeServiceError(w, err)
			return
		}
		render.JSON(w, r, stats)
	}
}
