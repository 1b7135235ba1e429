// Package api exposes the reading backend over HTTP: uploads, parse job
// status, library access, navigation, positions and bookmarks.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voxreader/voxreader/internal/config"
	"github.com/voxreader/voxreader/internal/pipeline"
)

// Server is the HTTP API server for voxreader.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Get("/api/documents/{docID}/chunks", s.handleChunks)
		r.Get("/api/documents/{docID}/outline", s.handleOutline)
		r.Get("/api/documents/{docID}/locate", s.handleLocate)
		r.Get("/api/documents/{docID}/chapter", s.handleCurrentChapter)

		r.Get("/api/documents/{docID}/position", s.handleGetPosition)
		r.Put("/api/documents/{docID}/position", s.handleSetPosition)

		r.Get("/api/documents/{docID}/bookmarks", s.handleListBookmarks)
		r.Post("/api/documents/{docID}/bookmarks", s.handleAddBookmark)
		r.Delete("/api/documents/{docID}/bookmarks/{bookmarkID}", s.handleDeleteBookmark)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
