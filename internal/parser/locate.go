package parser

import "github.com/voxreader/voxreader/internal/document"

// FirstChunkAtOrAfterPage returns the index of the first chunk whose page
// number is at or after targetPage, or -1 if no chunk qualifies. This is
// how page-space navigation (an outline click) lands in chunk space, the
// reader's native position unit: several chunks can share a page, and a
// blank or image-only page contributes none.
func FirstChunkAtOrAfterPage(chunks []document.TextChunk, targetPage int) int {
	for i, c := range chunks {
		if c.PageNumber >= targetPage {
			return i
		}
	}
	return -1
}
