// Package pdffile adapts github.com/ledongthuc/pdf to the parser's
// Document capability: page text runs, outline tree, destination lookups
// and Info-dict metadata.
package pdffile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/voxreader/voxreader/internal/document"
	"github.com/voxreader/voxreader/internal/parser"
)

// File is an open PDF document.
type File struct {
	f *os.File // nil when opened from memory
	r *pdflib.Reader

	indexOnce sync.Once
	pageIndex map[string]int // page dict fingerprint -> zero-based index
}

// Open opens the PDF at path.
func Open(path string) (*File, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &File{f: f, r: r}, nil
}

// NewFromBytes opens a PDF held in memory, e.g. an upload.
func NewFromBytes(data []byte) (*File, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &File{r: r}, nil
}

func (d *File) Close() error {
	if d.f != nil {
		return d.f.Close()
	}
	return nil
}

// PageCount returns the number of pages.
func (d *File) PageCount() int {
	return d.r.NumPage()
}

// PageText returns the page's text runs in content-stream order. A missing
// page yields no runs; a malformed content stream yields an error. The
// underlying library reports syntax errors by panicking, so interpretation
// runs behind a recover boundary.
func (d *File) PageText(_ context.Context, pageNumber int) (runs []string, err error) {
	defer catch(&err, "extract page %d", pageNumber)

	page := d.r.Page(pageNumber)
	if page.V.IsNull() {
		return nil, nil
	}
	content := page.Content()
	runs = make([]string, 0, len(content.Text))
	for _, t := range content.Text {
		runs = append(runs, t.S)
	}
	return runs, nil
}

// Metadata reads the trailer's Info dictionary. Absent fields stay empty.
func (d *File) Metadata(_ context.Context) (meta document.Metadata, err error) {
	defer catch(&err, "read info dict")

	info := d.r.Trailer().Key("Info")
	if info.IsNull() {
		return document.Metadata{}, nil
	}
	return document.Metadata{
		Title:   info.Key("Title").Text(),
		Author:  info.Key("Author").Text(),
		Subject: info.Key("Subject").Text(),
	}, nil
}

// catch converts a library panic into an error so one damaged object
// cannot take down the whole parse.
func catch(err *error, format string, args ...any) {
	if r := recover(); r != nil {
		*err = fmt.Errorf(format+": %v", append(args, r)...)
	}
}

var _ parser.Document = (*File)(nil)
