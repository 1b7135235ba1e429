package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/voxreader/voxreader/internal/document"
)

// fakeDocument serves canned page text and outline data.
type fakeDocument struct {
	fakeResolver

	pages      [][]string // pages[i] holds the text runs of page i+1
	outline    []RawOutlineNode
	outlineErr error
	meta       document.Metadata
	metaErr    error
	pageErrs   map[int]error
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(_ context.Context, pageNumber int) ([]string, error) {
	if err := d.pageErrs[pageNumber]; err != nil {
		return nil, err
	}
	return d.pages[pageNumber-1], nil
}

func (d *fakeDocument) Outline(_ context.Context) ([]RawOutlineNode, error) {
	return d.outline, d.outlineErr
}

func (d *fakeDocument) Metadata(_ context.Context) (document.Metadata, error) {
	return d.meta, d.metaErr
}

func TestParseDocument_MultiPage(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{
			{"Hello world.", "This is a test.\n\nSecond paragraph here."},
			{"Page two starts here."},
		},
		meta: document.Metadata{Title: "Fixture", Author: "Nobody"},
	}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(got.Chunks), got.Chunks)
	}
	if got.Chunks[0].Text != "Hello world. This is a test." {
		t.Errorf("chunk 0: %q", got.Chunks[0].Text)
	}
	if got.Chunks[1].Text != "Second paragraph here." {
		t.Errorf("chunk 1: %q", got.Chunks[1].Text)
	}
	if got.Chunks[2].Text != "Page two starts here." || got.Chunks[2].PageNumber != 2 {
		t.Errorf("chunk 2: %+v", got.Chunks[2])
	}
	if got.Chunks[2].ID != 2 {
		t.Errorf("id counter did not carry across pages: %d", got.Chunks[2].ID)
	}
	if got.Metadata.Title != "Fixture" {
		t.Errorf("metadata not passed through: %+v", got.Metadata)
	}
}

func TestParseDocument_IDMonotonicAcrossEmptyPages(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{
			{"First page text."},
			{},            // no runs at all
			{"   ", "\n"}, // whitespace only
			{"Fourth page text."},
		},
	}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(got.Chunks); i++ {
		if got.Chunks[i].ID <= got.Chunks[i-1].ID {
			t.Errorf("ids not strictly increasing at %d: %d <= %d", i, got.Chunks[i].ID, got.Chunks[i-1].ID)
		}
		if got.Chunks[i].PageNumber < got.Chunks[i-1].PageNumber {
			t.Errorf("page numbers decreased at %d", i)
		}
	}
	// Contiguous: ids are 0..len-1 despite the empty pages.
	last := got.Chunks[len(got.Chunks)-1]
	if last.ID != len(got.Chunks)-1 {
		t.Errorf("ids not contiguous: last id %d for %d chunks", last.ID, len(got.Chunks))
	}
	if last.PageNumber != 4 {
		t.Errorf("expected last chunk on page 4, got %d", last.PageNumber)
	}
}

func TestParseDocument_ScannedDocumentFails(t *testing.T) {
	doc := &fakeDocument{pages: [][]string{{}, {}, {}}}

	_, err := testParser().ParseDocument(context.Background(), doc)
	if !errors.Is(err, ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}
}

func TestParseDocument_PageErrorDegradesToPartial(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{
			{"Good page."},
			{"Never returned."},
		},
		pageErrs: map[int]error{2: fmt.Errorf("damaged content stream")},
	}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Chunks) != 1 || got.Chunks[0].Text != "Good page." {
		t.Errorf("expected partial result from good pages, got %+v", got.Chunks)
	}
}

func TestParseDocument_OutlineFailureNonFatal(t *testing.T) {
	doc := &fakeDocument{
		pages:      [][]string{{"Some text."}},
		outlineErr: errors.New("cross-reference table broken"),
	}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Outline) != 0 {
		t.Errorf("expected empty outline, got %+v", got.Outline)
	}
}

func TestParseDocument_OutlineResolved(t *testing.T) {
	doc := &fakeDocument{
		pages: [][]string{{"One."}, {"Two."}},
		outline: []RawOutlineNode{
			{Title: "Start", Dest: "d1"},
			{Title: "End", Dest: "d2"},
		},
	}
	doc.pageIndex = map[string]int{"d1": 0, "d2": 1}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Outline) != 2 {
		t.Fatalf("expected 2 outline nodes, got %d", len(got.Outline))
	}
	if got.Outline[1].PageNumber == nil || *got.Outline[1].PageNumber != 2 {
		t.Errorf("outline node 1: %v", got.Outline[1].PageNumber)
	}
}

func TestParseDocument_MetadataErrorNonFatal(t *testing.T) {
	doc := &fakeDocument{
		pages:   [][]string{{"Text."}},
		metaErr: errors.New("no info dict"),
	}

	got, err := testParser().ParseDocument(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata != (document.Metadata{}) {
		t.Errorf("expected zero metadata, got %+v", got.Metadata)
	}
}
