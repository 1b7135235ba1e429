package document

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOutlineNodeMarshalLeafItems(t *testing.T) {
	page := 4
	nodes := []OutlineNode{
		{
			Title:      "Chapter 1",
			PageNumber: &page,
			Items: []OutlineNode{
				{Title: "Section 1.1", PageNumber: nil},
			},
		},
		{Title: "Chapter 2"},
	}

	data, err := json.Marshal(nodes)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, `"items":null`) {
		t.Errorf("leaf items marshaled as null: %s", out)
	}
	if !strings.Contains(out, `"items":[]`) {
		t.Errorf("leaf items missing empty array: %s", out)
	}
	// Unresolved page numbers stay null; only items get the empty default.
	if !strings.Contains(out, `"pageNumber":null`) {
		t.Errorf("unresolved page number lost: %s", out)
	}

	var back []OutlineNode
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back[0].Items[0].Items == nil {
		t.Error("leaf items nil after round trip")
	}
}
