package document

import "encoding/json"

// TextChunk is the atomic display/narration unit of a parsed document.
// IDs are globally unique and strictly increasing in emission order
// across the whole document.
type TextChunk struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	PageNumber int    `json:"pageNumber"` // 1-based source page
}

// OutlineNode is a table-of-contents entry. PageNumber is nil when the
// entry has no destination or its destination could not be resolved;
// 0 or negative page numbers are never valid and never used as sentinels.
type OutlineNode struct {
	Title      string        `json:"title"`
	PageNumber *int          `json:"pageNumber"` // 1-based, nil if unresolved
	Items      []OutlineNode `json:"items"`
}

// MarshalJSON emits items as an empty array rather than null for leaf
// nodes, so consumers always see a sequence.
func (n OutlineNode) MarshalJSON() ([]byte, error) {
	type node OutlineNode
	v := node(n)
	if v.Items == nil {
		v.Items = []OutlineNode{}
	}
	return json.Marshal(v)
}

// Metadata is best-effort document metadata. Any field may be empty.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
}

// ParseResult is the output of a full document parse.
type ParseResult struct {
	Chunks   []TextChunk   `json:"chunks"`
	Outline  []OutlineNode `json:"outline"`
	Metadata Metadata      `json:"metadata"`
}
