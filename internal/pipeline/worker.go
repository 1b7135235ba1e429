package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voxreader/voxreader/internal/chunker"
	"github.com/voxreader/voxreader/internal/document"
	"github.com/voxreader/voxreader/internal/metadata"
	"github.com/voxreader/voxreader/internal/parser"
	"github.com/voxreader/voxreader/internal/pdffile"
	"github.com/voxreader/voxreader/internal/store"
)

// Worker processes a single parse job.
type Worker struct {
	store    *store.Store
	enricher *metadata.Enricher
	log      *slog.Logger
	chunkCfg chunker.Config
}

func NewWorker(st *store.Store, enricher *metadata.Enricher, log *slog.Logger, chunkCfg chunker.Config) *Worker {
	return &Worker{
		store:    st,
		enricher: enricher,
		log:      log,
		chunkCfg: chunkCfg,
	}
}

// Process runs the full parse pipeline for a job: open, dedup, parse,
// enrich, store.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: dedup against the library by content hash.
	if !w.dedup(ctx, job, log) {
		return
	}

	// Phase 2: parse.
	job.SetStatus(StatusParsing)
	doc, err := pdffile.NewFromBytes(job.FileData())
	if err != nil {
		log.Error("open failed", "error", err)
		job.Fail(FailureParse, fmt.Sprintf("open: %s", err))
		return
	}
	defer doc.Close()

	p := parser.New(log, w.chunkCfg)
	result, err := p.ParseDocument(ctx, doc)
	if err != nil {
		if errors.Is(err, parser.ErrNoExtractableText) {
			log.Warn("document has no text layer")
			job.Fail(FailureNoTextLayer, err.Error())
			return
		}
		log.Error("parse failed", "error", err)
		job.Fail(FailureParse, err.Error())
		return
	}
	job.SetProgress(doc.PageCount(), len(result.Chunks), countOutlineNodes(result.Outline))
	log.Info("parsed document", "pages", doc.PageCount(), "chunks", len(result.Chunks))

	// Phase 3: best-effort metadata enrichment.
	job.SetStatus(StatusEnriching)
	result.Metadata = w.enricher.Enrich(ctx, result.Metadata, result.Chunks, job.Filename)

	// Phase 4: store in the library.
	job.SetStatus(StatusStoring)
	record := &store.Document{
		ID:        job.DocID,
		Filename:  job.Filename,
		Hash:      job.ContentHash,
		Metadata:  result.Metadata,
		PageCount: doc.PageCount(),
	}
	if err := w.store.SaveDocument(ctx, record, result.Chunks, result.Outline); err != nil {
		log.Error("store failed", "error", err)
		job.Fail(FailureStore, err.Error())
		return
	}

	job.SetStatus(StatusCompleted)
	log.Info("document stored", "doc_id", record.ID, "title", result.Metadata.Title)
}

// dedup checks the library for a document with the same content hash.
// Without force the job short-circuits as a duplicate; with force the
// stored copy is removed first, since the documents table holds unique
// constraints on id and hash that a plain re-insert would hit. Reports
// whether processing should continue.
func (w *Worker) dedup(ctx context.Context, job *Job, log *slog.Logger) bool {
	existing, err := w.store.GetDocumentByHash(ctx, job.ContentHash)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("dedup check failed, proceeding", "error", err)
		}
		return true
	}

	if !job.Force() {
		log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
		job.SetDocID(existing.ID)
		job.SetStatus(StatusDupSkipped)
		return false
	}

	if err := w.store.DeleteDocument(ctx, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to replace existing document", "doc_id", existing.ID, "error", err)
		job.Fail(FailureStore, fmt.Sprintf("replace existing: %s", err))
		return false
	}
	log.Info("forced re-ingest, removed existing document", "doc_id", existing.ID)
	return true
}

func countOutlineNodes(nodes []document.OutlineNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countOutlineNodes(node.Items)
	}
	return n
}
