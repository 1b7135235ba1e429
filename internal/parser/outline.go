package parser

import (
	"context"

	"github.com/voxreader/voxreader/internal/document"
)

// ResolveOutline maps a raw outline tree onto 1-based page numbers,
// depth-first, preserving sibling order. Destination lookups that fail
// leave only that node's page number unset; siblings, children and parents
// are unaffected. One broken entry must not void the whole table of
// contents.
func (p *Parser) ResolveOutline(ctx context.Context, nodes []RawOutlineNode, res DestinationResolver) []document.OutlineNode {
	out := make([]document.OutlineNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, document.OutlineNode{
			Title:      n.Title,
			PageNumber: p.resolvePage(ctx, n, res),
			Items:      p.ResolveOutline(ctx, n.Children, res),
		})
	}
	return out
}

// resolvePage is the per-node failure boundary: every error path inside it
// ends in nil, never in a propagated error.
func (p *Parser) resolvePage(ctx context.Context, n RawOutlineNode, res DestinationResolver) *int {
	dest := n.Dest
	if n.Named != "" {
		d, err := res.ResolveNamedDestination(ctx, n.Named)
		if err != nil {
			p.log.Warn("named destination lookup failed", "title", n.Title, "name", n.Named, "error", err)
			return nil
		}
		dest = d
	}
	if dest == nil {
		return nil
	}

	idx, err := res.PageIndexOfDestination(ctx, dest)
	if err != nil {
		p.log.Warn("page index lookup failed", "title", n.Title, "error", err)
		return nil
	}
	if idx < 0 {
		p.log.Warn("destination resolved to invalid page index", "title", n.Title, "index", idx)
		return nil
	}
	page := idx + 1
	return &page
}

// CurrentChapter reverse-maps a page to the deepest outline entry at or
// before it in reading order, for "current chapter" display. Returns nil
// when no entry precedes the page.
func CurrentChapter(nodes []document.OutlineNode, page int) *document.OutlineNode {
	var best *document.OutlineNode
	var walk func(items []document.OutlineNode)
	walk = func(items []document.OutlineNode) {
		for i := range items {
			n := &items[i]
			if n.PageNumber != nil && *n.PageNumber <= page {
				best = n
			}
			walk(n.Items)
		}
	}
	walk(nodes)
	return best
}
