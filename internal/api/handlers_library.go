package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voxreader/voxreader/internal/store"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Store().ListDocuments(r.Context())
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	doc, err := s.orchestrator.Store().GetDocument(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	err := s.orchestrator.Store().DeleteDocument(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": docID})
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if offset < 0 || limit < 1 {
		jsonError(w, "offset must be >= 0 and limit >= 1", http.StatusBadRequest)
		return
	}

	if _, err := s.orchestrator.Store().GetDocument(r.Context(), docID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		s.log.Error("get document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	chunks, err := s.orchestrator.Store().Chunks(r.Context(), docID, offset, limit)
	if err != nil {
		s.log.Error("load chunks failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load chunks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id": docID,
		"offset": offset,
		"chunks": chunks,
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	if _, err := s.orchestrator.Store().GetDocument(r.Context(), docID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		s.log.Error("get document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	outline, err := s.orchestrator.Store().Outline(r.Context(), docID)
	if err != nil {
		s.log.Error("load outline failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load outline", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":  docID,
		"outline": outline,
	})
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
