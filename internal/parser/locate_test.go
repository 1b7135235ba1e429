package parser

import (
	"testing"

	"github.com/voxreader/voxreader/internal/document"
)

func TestFirstChunkAtOrAfterPage(t *testing.T) {
	// Page 3 contributes no chunks (image-only page amid text).
	chunks := []document.TextChunk{
		{ID: 0, Text: "a", PageNumber: 1},
		{ID: 1, Text: "b", PageNumber: 1},
		{ID: 2, Text: "c", PageNumber: 2},
		{ID: 3, Text: "d", PageNumber: 4},
		{ID: 4, Text: "e", PageNumber: 4},
	}

	tests := []struct {
		page int
		want int
	}{
		{0, 0}, // before first page
		{1, 0},
		{2, 2},
		{3, 3}, // empty page: lands on first chunk after it
		{4, 3},
		{5, -1}, // beyond last extracted page
	}
	for _, tt := range tests {
		if got := FirstChunkAtOrAfterPage(chunks, tt.page); got != tt.want {
			t.Errorf("page %d: expected index %d, got %d", tt.page, tt.want, got)
		}
	}

	if got := FirstChunkAtOrAfterPage(nil, 1); got != -1 {
		t.Errorf("empty chunks: expected -1, got %d", got)
	}
}
