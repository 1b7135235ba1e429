// Package metadata assembles best-effort document metadata in layers:
// the PDF's own Info dictionary, a content heuristic over the opening
// pages, an optional external book lookup, and finally a filename-derived
// title. No layer's failure surfaces to the caller; each falls back to
// the previous layer's value.
package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/voxreader/voxreader/internal/document"
)

// Lookup is an optional external book-metadata source.
type Lookup interface {
	Search(ctx context.Context, title, author string) (document.Metadata, error)
}

// Enricher layers metadata sources. lookup may be nil to disable the
// external layer.
type Enricher struct {
	log    *slog.Logger
	lookup Lookup
}

func NewEnricher(log *slog.Logger, lookup Lookup) *Enricher {
	return &Enricher{log: log, lookup: lookup}
}

// Enrich fills the gaps in meta from the opening chunks, the external
// lookup, and the filename. It never fails: the worst case is meta
// returned as given with a filename-derived title.
func (e *Enricher) Enrich(ctx context.Context, meta document.Metadata, chunks []document.TextChunk, filename string) document.Metadata {
	if meta.Title == "" {
		meta.Title = guessTitle(chunks)
	}
	if meta.Author == "" {
		meta.Author = guessAuthor(chunks)
	}

	if e.lookup != nil && meta.Title != "" {
		if found, err := e.lookup.Search(ctx, meta.Title, meta.Author); err != nil {
			e.log.Debug("external metadata lookup failed", "title", meta.Title, "error", err)
		} else {
			if meta.Author == "" {
				meta.Author = found.Author
			}
			if meta.Publisher == "" {
				meta.Publisher = found.Publisher
			}
			if meta.CoverURL == "" {
				meta.CoverURL = found.CoverURL
			}
		}
	}

	if meta.Title == "" {
		meta.Title = TitleFromFilename(filename)
	}
	return meta
}

// guessTitle takes the first short chunk from the opening pages. Title
// pages typically render the title as its own isolated text block.
func guessTitle(chunks []document.TextChunk) string {
	for _, c := range chunks {
		if c.PageNumber > 3 {
			break
		}
		if n := utf8.RuneCountInString(c.Text); n >= 3 && n <= 100 {
			return c.Text
		}
	}
	return ""
}

// guessAuthor looks for a "by Someone" block near the front.
func guessAuthor(chunks []document.TextChunk) string {
	for _, c := range chunks {
		if c.PageNumber > 3 {
			break
		}
		lower := strings.ToLower(c.Text)
		if strings.HasPrefix(lower, "by ") && utf8.RuneCountInString(c.Text) <= 60 {
			return strings.TrimSpace(c.Text[3:])
		}
	}
	return ""
}

// TitleFromFilename derives a presentable title from a file name:
// "on_reading-well.pdf" becomes "on reading well".
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
