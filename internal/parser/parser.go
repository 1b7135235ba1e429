// Package parser converts a PDF-access capability into a parsed document:
// normalized, uniquely-identified text chunks plus a resolved outline.
package parser

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/voxreader/voxreader/internal/chunker"
	"github.com/voxreader/voxreader/internal/document"
)

// ErrNoExtractableText reports a document whose pages yielded no text at
// all, typically a scanned or image-only PDF. Callers match it with
// errors.Is to show a "no text layer" message instead of a generic one.
var ErrNoExtractableText = errors.New("no extractable text in document")

// Destination is an opaque concrete destination record owned by the
// PDF-access collaborator. The parser never inspects it, only passes it
// back for page-index lookup.
type Destination any

// RawOutlineNode is an unresolved table-of-contents entry as retrieved
// from the document. Dest and Named are mutually exclusive; both empty
// means the entry has no destination.
type RawOutlineNode struct {
	Title    string
	Dest     Destination // concrete destination, nil if none
	Named    string      // symbolic destination name, "" if none
	Children []RawOutlineNode
}

// DestinationResolver supplies the two lookups outline resolution needs.
// Both may fail; failures are isolated per outline node.
type DestinationResolver interface {
	ResolveNamedDestination(ctx context.Context, name string) (Destination, error)
	PageIndexOfDestination(ctx context.Context, dest Destination) (int, error)
}

// Document is the external PDF-access capability the parser consumes.
type Document interface {
	DestinationResolver

	PageCount() int
	// PageText returns the page's text runs in reading order.
	PageText(ctx context.Context, pageNumber int) ([]string, error)
	// Outline returns the raw outline tree, or an empty slice if the
	// document has none.
	Outline(ctx context.Context) ([]RawOutlineNode, error)
	Metadata(ctx context.Context) (document.Metadata, error)
}

// Parser runs the extraction-and-segmentation pipeline.
type Parser struct {
	log      *slog.Logger
	chunkCfg chunker.Config
}

// New creates a parser. log must not be nil.
func New(log *slog.Logger, chunkCfg chunker.Config) *Parser {
	return &Parser{log: log, chunkCfg: chunkCfg}
}

// ParseDocument extracts, normalizes and chunks every page of doc in page
// order, resolves its outline, and attaches best-effort metadata.
//
// Pages are processed strictly sequentially: chunk id assignment carries a
// running counter across pages, so ids stay contiguous and strictly
// increasing document-wide even when pages yield no chunks. The only fatal
// condition is a document with zero chunks after all pages are processed
// (ErrNoExtractableText); emptiness is deliberately not checked
// mid-document since a later page can still yield text. Outline and
// metadata failures degrade to an empty outline and zero-value metadata.
func (p *Parser) ParseDocument(ctx context.Context, doc Document) (*document.ParseResult, error) {
	var chunks []document.TextChunk
	startID := 0

	n := doc.PageCount()
	for page := 1; page <= n; page++ {
		runs, err := doc.PageText(ctx, page)
		if err != nil {
			p.log.Warn("page text extraction failed", "page", page, "error", err)
			continue
		}
		// Runs are space-joined regardless of layout position; the
		// chunker's whitespace collapsing absorbs the slack. Lossy for
		// tightly kerned runs, but keeps chunk ids reproducible.
		text := Normalize(strings.Join(runs, " "))
		pageChunks := chunker.Chunk(text, page, startID, p.chunkCfg)
		chunks = append(chunks, pageChunks...)
		startID += len(pageChunks)
	}

	if len(chunks) == 0 {
		return nil, ErrNoExtractableText
	}

	outline := []document.OutlineNode{}
	if raw, err := doc.Outline(ctx); err != nil {
		p.log.Warn("outline retrieval failed, continuing without", "error", err)
	} else {
		outline = p.ResolveOutline(ctx, raw, doc)
	}

	meta, err := doc.Metadata(ctx)
	if err != nil {
		p.log.Warn("document metadata unavailable", "error", err)
		meta = document.Metadata{}
	}

	return &document.ParseResult{
		Chunks:   chunks,
		Outline:  outline,
		Metadata: meta,
	}, nil
}
