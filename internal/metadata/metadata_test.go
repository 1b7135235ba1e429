package metadata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxreader/voxreader/internal/document"
)

type fakeLookup struct {
	meta document.Metadata
	err  error
}

func (f *fakeLookup) Search(_ context.Context, _, _ string) (document.Metadata, error) {
	return f.meta, f.err
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestEnrich_InternalMetadataWins(t *testing.T) {
	lookup := &fakeLookup{meta: document.Metadata{Author: "Lookup Author", Publisher: "Lookup House"}}
	e := NewEnricher(testLogger(), lookup)

	got := e.Enrich(context.Background(), document.Metadata{Title: "Info Title", Author: "Info Author"}, nil, "book.pdf")
	if got.Title != "Info Title" || got.Author != "Info Author" {
		t.Errorf("internal metadata overridden: %+v", got)
	}
	if got.Publisher != "Lookup House" {
		t.Errorf("lookup should fill empty fields: %+v", got)
	}
}

func TestEnrich_HeuristicFromOpeningPages(t *testing.T) {
	chunks := []document.TextChunk{
		{ID: 0, Text: "The Silent Orchard", PageNumber: 1},
		{ID: 1, Text: "by Maren Holt", PageNumber: 1},
		{ID: 2, Text: "Chapter one begins here with a much longer paragraph of ordinary prose.", PageNumber: 2},
	}
	e := NewEnricher(testLogger(), nil)

	got := e.Enrich(context.Background(), document.Metadata{}, chunks, "scan.pdf")
	if got.Title != "The Silent Orchard" {
		t.Errorf("title heuristic: got %q", got.Title)
	}
	if got.Author != "Maren Holt" {
		t.Errorf("author heuristic: got %q", got.Author)
	}
}

func TestEnrich_LookupFailureFallsBack(t *testing.T) {
	e := NewEnricher(testLogger(), &fakeLookup{err: errors.New("offline")})

	got := e.Enrich(context.Background(), document.Metadata{Title: "Known"}, nil, "f.pdf")
	if got.Title != "Known" || got.Author != "" {
		t.Errorf("lookup failure should be silent: %+v", got)
	}
}

func TestEnrich_FilenameDefault(t *testing.T) {
	e := NewEnricher(testLogger(), nil)

	got := e.Enrich(context.Background(), document.Metadata{}, nil, "/books/on_reading-well.pdf")
	if got.Title != "on reading well" {
		t.Errorf("expected filename-derived title, got %q", got.Title)
	}
}

func TestOpenLibraryClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("title"); got != "Dune" {
			t.Errorf("title param: %q", got)
		}
		w.Write([]byte(`{"docs":[{"title":"Dune","author_name":["Frank Herbert"],"publisher":["Chilton"],"cover_i":12345}]}`))
	}))
	defer srv.Close()

	c := NewOpenLibraryClient(srv.URL)
	got, err := c.Search(context.Background(), "Dune", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Author != "Frank Herbert" || got.Publisher != "Chilton" {
		t.Errorf("got %+v", got)
	}
	if got.CoverURL != "https://covers.openlibrary.org/b/id/12345-M.jpg" {
		t.Errorf("cover url: %q", got.CoverURL)
	}
}

func TestOpenLibraryClient_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"docs":[]}`))
	}))
	defer srv.Close()

	if _, err := NewOpenLibraryClient(srv.URL).Search(context.Background(), "Nothing", ""); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"book.pdf", "book"},
		{"/a/b/my_great-novel.pdf", "my great novel"},
		{"Already Nice.pdf", "Already Nice"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
