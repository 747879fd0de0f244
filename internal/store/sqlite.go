package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bunkolab/bunko/internal/models"
)

var _ Counter = (*SQLiteStore)(nil)

// SQLiteStore is the relational VectorStore backend. Embeddings live in a
// BLOB column next to the chunk text, so a document's chunk and vector
// counts can only disagree through a NULL embedding, which Get treats as
// not indexed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath and initializes
// the schema. Parent directories are created if needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		org_id INTEGER NOT NULL,
		filename TEXT NOT NULL,
		chunk_size INTEGER NOT NULL,
		overlap INTEGER NOT NULL DEFAULT 0,
		model TEXT NOT NULL DEFAULT '',
		upload_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		active INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (org_id) REFERENCES organizations(id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);
	CREATE INDEX IF NOT EXISTS idx_documents_org_active ON documents(org_id, active);

	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_ordinal ON chunks(document_id, ordinal);
	`
	_, err := db.Exec(schema)
	return err
}

// ensureOrg returns the id for the named organization, creating it if needed.
func ensureOrg(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM organizations WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO organizations (name, active) VALUES (?, 1)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Put stores doc with its chunks and vectors. Previous rows for the same
// filename are replaced: old chunks deleted, old document rows deactivated.
func (s *SQLiteStore) Put(ctx context.Context, doc *models.Document, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orgID, err := ensureOrg(ctx, tx, doc.Org)
	if err != nil {
		return fmt.Errorf("ensure organization: %w", err)
	}

	// Last write wins: clear prior index entries for this filename.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE filename = ?)`,
		doc.Name); err != nil {
		return fmt.Errorf("clear previous chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET active = 0 WHERE filename = ?`, doc.Name); err != nil {
		return fmt.Errorf("deactivate previous document: %w", err)
	}

	uploadTime := doc.UploadTime
	if uploadTime.IsZero() {
		uploadTime = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (org_id, filename, chunk_size, overlap, model, upload_time, active)
		 VALUES (?, ?, ?, ?, ?, ?, 1)`,
		orgID, doc.Name, doc.ChunkSize, doc.Overlap, doc.Model, uploadTime)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	doc.ID = docID

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (document_id, ordinal, text, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, text := range chunks {
		if _, err := stmt.ExecContext(ctx, docID, i, text, float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Get returns the chunks and vectors of the active document named name.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]string, [][]float32, error) {
	var docID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE filename = ? AND active = 1 ORDER BY id DESC LIMIT 1`,
		name).Scan(&docID)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotIndexed
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text, embedding FROM chunks WHERE document_id = ? ORDER BY ordinal`, docID)
	if err != nil {
		return nil, nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []string
	var vectors [][]float32
	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, nil, fmt.Errorf("scan chunk: %w", err)
		}
		if blob == nil {
			return nil, nil, ErrNotIndexed
		}
		chunks = append(chunks, text)
		vectors = append(vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(chunks) == 0 {
		return nil, nil, ErrNotIndexed
	}
	return chunks, vectors, nil
}

// Remove deletes the chunk rows and soft-deletes the document row.
func (s *SQLiteStore) Remove(ctx context.Context, name, org string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `SELECT d.id FROM documents d JOIN organizations o ON o.id = d.org_id
		WHERE d.filename = ? AND d.active = 1`
	args := []any{name}
	if org != "" {
		query += ` AND o.name = ?`
		args = append(args, org)
	}
	var docID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&docID); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotIndexed
		}
		return fmt.Errorf("lookup document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET active = 0 WHERE id = ?`, docID); err != nil {
		return fmt.Errorf("deactivate document: %w", err)
	}
	return tx.Commit()
}

// ListActive returns the active documents, optionally filtered by organization.
func (s *SQLiteStore) ListActive(ctx context.Context, org string) ([]*models.Document, error) {
	query := `SELECT d.id, o.name, d.filename, d.chunk_size, d.overlap, d.model, d.upload_time
		FROM documents d JOIN organizations o ON o.id = d.org_id
		WHERE d.active = 1`
	args := []any{}
	if org != "" {
		query += ` AND o.name = ?`
		args = append(args, org)
	}
	query += ` ORDER BY d.upload_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		doc := &models.Document{Active: true}
		if err := rows.Scan(&doc.ID, &doc.Org, &doc.Name, &doc.ChunkSize, &doc.Overlap, &doc.Model, &doc.UploadTime); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// CountDocuments returns the number of active documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&count)
	return count, err
}

// CountChunks returns the number of chunks belonging to active documents.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks c JOIN documents d ON d.id = c.document_id WHERE d.active = 1`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
