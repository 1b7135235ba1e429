// Package store persists the reading library in SQLite: parsed documents
// with their chunks and outline, reading positions, and bookmarks.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voxreader/voxreader/internal/document"
)

// ErrNotFound reports a missing document, position or bookmark.
var ErrNotFound = errors.New("not found")

// Document is a library record.
type Document struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	Hash       string            `json:"hash"`
	Metadata   document.Metadata `json:"metadata"`
	PageCount  int               `json:"page_count"`
	ChunkCount int               `json:"chunk_count"`
	AddedAt    time.Time         `json:"added_at"`
}

// Bookmark marks a chunk by its array index into the document's chunk
// sequence (not by chunk id).
type Bookmark struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is a SQLite-backed library store.
type Store struct {
	db *sql.DB
}

// New opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		hash TEXT NOT NULL UNIQUE,
		metadata TEXT NOT NULL,
		outline TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		added_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		chunk_id INTEGER NOT NULL,
		page_number INTEGER NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (document_id, chunk_index),
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_page ON chunks(document_id, page_number);

	CREATE TABLE IF NOT EXISTS positions (
		document_id TEXT PRIMARY KEY,
		chunk_index INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_document ON bookmarks(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// SaveDocument stores a library record with its parse result in one
// transaction.
func (s *Store) SaveDocument(ctx context.Context, doc *Document, chunks []document.TextChunk, outline []document.OutlineNode) error {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}

	doc.ChunkCount = len(chunks)
	doc.AddedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, hash, metadata, outline, page_count, chunk_count, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Hash, string(metaJSON), string(outlineJSON),
		doc.PageCount, doc.ChunkCount, doc.AddedAt,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (document_id, chunk_index, chunk_id, page_number, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, doc.ID, i, c.ID, c.PageNumber, c.Text); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetDocument returns a library record by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	return s.getDocument(ctx, "id = ?", id)
}

// GetDocumentByHash returns a library record by content hash, for dedup.
func (s *Store) GetDocumentByHash(ctx context.Context, hash string) (*Document, error) {
	return s.getDocument(ctx, "hash = ?", hash)
}

func (s *Store) getDocument(ctx context.Context, where string, arg any) (*Document, error) {
	var doc Document
	var metaJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, hash, metadata, page_count, chunk_count, added_at
		 FROM documents WHERE `+where, arg,
	).Scan(&doc.ID, &doc.Filename, &doc.Hash, &metaJSON, &doc.PageCount, &doc.ChunkCount, &doc.AddedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the library, most recently added first.
func (s *Store) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, hash, metadata, page_count, chunk_count, added_at
		 FROM documents ORDER BY added_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var metaJSON string
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Hash, &metaJSON,
			&doc.PageCount, &doc.ChunkCount, &doc.AddedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and, via cascade, its chunks,
// position and bookmarks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document: %w", ErrNotFound)
	}
	return nil
}

// Chunks returns a window of a document's chunk sequence in chunk-index
// order. limit < 0 means no limit.
func (s *Store) Chunks(ctx context.Context, docID string, offset, limit int) ([]document.TextChunk, error) {
	if limit < 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, page_number, text FROM chunks
		 WHERE document_id = ? ORDER BY chunk_index LIMIT ? OFFSET ?`,
		docID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []document.TextChunk
	for rows.Next() {
		var c document.TextChunk
		if err := rows.Scan(&c.ID, &c.PageNumber, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Outline returns a document's resolved outline tree.
func (s *Store) Outline(ctx context.Context, docID string) ([]document.OutlineNode, error) {
	var outlineJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT outline FROM documents WHERE id = ?`, docID).Scan(&outlineJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var outline []document.OutlineNode
	if err := json.Unmarshal([]byte(outlineJSON), &outline); err != nil {
		return nil, fmt.Errorf("unmarshal outline: %w", err)
	}
	return outline, nil
}

// Position returns the saved reading position (a chunk index), or
// ErrNotFound when none has been saved yet.
func (s *Store) Position(ctx context.Context, docID string) (int, error) {
	var idx int
	err := s.db.QueryRowContext(ctx,
		`SELECT chunk_index FROM positions WHERE document_id = ?`, docID).Scan(&idx)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("position: %w", ErrNotFound)
	}
	return idx, err
}

// SetPosition saves the reading position for a document.
func (s *Store) SetPosition(ctx context.Context, docID string, chunkIndex int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions (document_id, chunk_index, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET chunk_index = excluded.chunk_index, updated_at = excluded.updated_at`,
		docID, chunkIndex, time.Now())
	return err
}

// AddBookmark stores a bookmark.
func (s *Store) AddBookmark(ctx context.Context, b *Bookmark) error {
	b.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, document_id, chunk_index, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.DocumentID, b.ChunkIndex, b.Note, b.CreatedAt)
	return err
}

// ListBookmarks returns a document's bookmarks in reading order.
func (s *Store) ListBookmarks(ctx context.Context, docID string) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, note, created_at FROM bookmarks
		 WHERE document_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.DocumentID, &b.ChunkIndex, &b.Note, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// DeleteBookmark removes a bookmark by id.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmark: %w", ErrNotFound)
	}
	return nil
}
