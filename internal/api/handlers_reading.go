package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxreader/voxreader/internal/parser"
	"github.com/voxreader/voxreader/internal/store"
)

// handleLocate maps a printed page number to the first chunk at or after
// that page, so the frontend can jump to an outline entry.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	page := queryInt(r, "page", 0)
	if page < 1 {
		jsonError(w, "page must be a positive integer", http.StatusBadRequest)
		return
	}

	chunks, err := s.orchestrator.Store().Chunks(r.Context(), docID, 0, -1)
	if err != nil {
		s.log.Error("load chunks failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load chunks", http.StatusInternalServerError)
		return
	}
	if len(chunks) == 0 {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	idx := parser.FirstChunkAtOrAfterPage(chunks, page)
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":      docID,
		"page":        page,
		"chunk_index": idx,
		"found":       idx >= 0,
	})
}

// handleCurrentChapter reports the deepest outline entry covering a page.
func (s *Server) handleCurrentChapter(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	page := queryInt(r, "page", 0)
	if page < 1 {
		jsonError(w, "page must be a positive integer", http.StatusBadRequest)
		return
	}

	outline, err := s.orchestrator.Store().Outline(r.Context(), docID)
	if err != nil {
		s.log.Error("load outline failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load outline", http.StatusInternalServerError)
		return
	}

	node := parser.CurrentChapter(outline, page)
	resp := map[string]any{
		"doc_id":  docID,
		"page":    page,
		"chapter": nil,
	}
	if node != nil {
		resp["chapter"] = map[string]any{
			"title":      node.Title,
			"pageNumber": node.PageNumber,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	idx, err := s.orchestrator.Store().Position(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "no reading position for document", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("load position failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load position", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":      docID,
		"chunk_index": idx,
	})
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var body struct {
		ChunkIndex int `json:"chunk_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

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
	if body.ChunkIndex < 0 || body.ChunkIndex >= doc.ChunkCount {
		jsonError(w, "chunk_index out of range", http.StatusBadRequest)
		return
	}

	if err := s.orchestrator.Store().SetPosition(r.Context(), docID, body.ChunkIndex); err != nil {
		s.log.Error("save position failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to save position", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":      docID,
		"chunk_index": body.ChunkIndex,
	})
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	bms, err := s.orchestrator.Store().ListBookmarks(r.Context(), docID)
	if err != nil {
		s.log.Error("list bookmarks failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to list bookmarks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":    docID,
		"bookmarks": bms,
	})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var body struct {
		ChunkIndex int    `json:"chunk_index"`
		Note       string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

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
	if body.ChunkIndex < 0 || body.ChunkIndex >= doc.ChunkCount {
		jsonError(w, "chunk_index out of range", http.StatusBadRequest)
		return
	}

	bm := &store.Bookmark{
		ID:         uuid.NewString(),
		DocumentID: docID,
		ChunkIndex: body.ChunkIndex,
		Note:       body.Note,
		CreatedAt:  time.Now(),
	}
	if err := s.orchestrator.Store().AddBookmark(r.Context(), bm); err != nil {
		s.log.Error("save bookmark failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to save bookmark", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, bm)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	bookmarkID := chi.URLParam(r, "bookmarkID")
	err := s.orchestrator.Store().DeleteBookmark(r.Context(), bookmarkID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "bookmark not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete bookmark failed", "bookmark_id", bookmarkID, "error", err)
		jsonError(w, "failed to delete bookmark", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": bookmarkID})
}
