package pdffile

import (
	"context"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/voxreader/voxreader/internal/parser"
)

// Outline walks Root > Outlines into raw nodes. Destinations come from the
// node's Dest entry or, failing that, from a GoTo action. A string or name
// destination stays symbolic for later lookup through the name tables; an
// array destination is kept as-is for page-index resolution.
func (d *File) Outline(_ context.Context) (nodes []parser.RawOutlineNode, err error) {
	defer catch(&err, "read outline")

	root := d.r.Trailer().Key("Root").Key("Outlines")
	if root.IsNull() {
		return nil, nil
	}
	remaining := maxOutlineNodes
	return outlineChildren(root, &remaining), nil
}

// maxOutlineNodes caps the outline walk. A corrupt file whose Next or
// First pointers form a cycle would otherwise keep the walk going forever;
// the recover boundary cannot interrupt a loop that never panics.
const maxOutlineNodes = 4096

func outlineChildren(entry pdflib.Value, remaining *int) []parser.RawOutlineNode {
	var out []parser.RawOutlineNode
	for child := entry.Key("First"); child.Kind() == pdflib.Dict && *remaining > 0; child = child.Key("Next") {
		*remaining--
		out = append(out, rawOutlineNode(child, remaining))
	}
	return out
}

func rawOutlineNode(v pdflib.Value, remaining *int) parser.RawOutlineNode {
	n := parser.RawOutlineNode{
		Title:    v.Key("Title").Text(),
		Children: outlineChildren(v, remaining),
	}

	dest := v.Key("Dest")
	if dest.IsNull() {
		if a := v.Key("A"); a.Key("S").Name() == "GoTo" {
			dest = a.Key("D")
		}
	}
	switch dest.Kind() {
	case pdflib.String:
		n.Named = dest.RawString()
	case pdflib.Name:
		n.Named = dest.Name()
	case pdflib.Array:
		n.Dest = dest
	}
	return n
}

// ResolveNamedDestination looks name up in Root > Names > Dests (a name
// tree) and the legacy Root > Dests dictionary. The stored value may be
// the destination array itself or a dictionary wrapping it under D.
func (d *File) ResolveNamedDestination(_ context.Context, name string) (dest parser.Destination, err error) {
	defer catch(&err, "resolve named destination %q", name)

	root := d.r.Trailer().Key("Root")
	v := findInNameTree(root.Key("Names").Key("Dests"), name)
	if v.IsNull() {
		v = root.Key("Dests").Key(name)
	}
	if v.Kind() == pdflib.Dict {
		v = v.Key("D")
	}
	if v.Kind() != pdflib.Array {
		return nil, fmt.Errorf("named destination %q not found", name)
	}
	return v, nil
}

func findInNameTree(tree pdflib.Value, name string) pdflib.Value {
	if names := tree.Key("Names"); names.Kind() == pdflib.Array {
		for i := 0; i+1 < names.Len(); i += 2 {
			if names.Index(i).RawString() == name {
				return names.Index(i + 1)
			}
		}
	}
	if kids := tree.Key("Kids"); kids.Kind() == pdflib.Array {
		for i := 0; i < kids.Len(); i++ {
			if v := findInNameTree(kids.Index(i), name); !v.IsNull() {
				return v
			}
		}
	}
	return pdflib.Value{}
}

// PageIndexOfDestination maps a destination array's first element to a
// zero-based page index. The library resolves indirect references when the
// element is read, so page identity is established by fingerprinting the
// raw page dictionary (indirect members keep their "N G R" form, which
// makes the fingerprint unique per page in practice).
func (d *File) PageIndexOfDestination(_ context.Context, dest parser.Destination) (idx int, err error) {
	defer catch(&err, "resolve destination page")

	v, ok := dest.(pdflib.Value)
	if !ok || v.Kind() != pdflib.Array || v.Len() == 0 {
		return 0, fmt.Errorf("malformed destination record")
	}

	target := v.Index(0)
	// Some producers store a plain page number instead of a page reference.
	if target.Kind() == pdflib.Integer {
		return int(target.Int64()), nil
	}
	if target.Kind() != pdflib.Dict {
		return 0, fmt.Errorf("destination does not reference a page")
	}

	d.indexOnce.Do(d.buildPageIndex)
	i, ok := d.pageIndex[target.String()]
	if !ok {
		return 0, fmt.Errorf("destination page not in page tree")
	}
	return i, nil
}

func (d *File) buildPageIndex() {
	d.pageIndex = make(map[string]int, d.r.NumPage())
	for i := 1; i <= d.r.NumPage(); i++ {
		page := d.r.Page(i)
		if page.V.IsNull() {
			continue
		}
		d.pageIndex[page.V.String()] = i - 1
	}
}
