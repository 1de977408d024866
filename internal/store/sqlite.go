// Package store provides the SQLite implementation of the Store interface.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/vector"
)

// SQLiteStore implements Store using SQLite with one row per chunk.
// Embeddings are stored as little-endian float32 BLOBs; similarity search is
// a brute-force inner-product scan (embeddings are unit-normalized upstream,
// so inner product equals cosine similarity).
type SQLiteStore struct {
	db         *sql.DB
	dimensions int
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. dimensions is the store-wide embedding dimension; every insert
// and search is validated against it. Parent directories are created if they
// do not exist.
func NewSQLiteStore(dbPath string, dimensions int) (*SQLiteStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
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

	return &SQLiteStore{db: db, dimensions: dimensions}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		metadata TEXT NOT NULL,
		UNIQUE (document_id, chunk_index)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Dimensions returns the store-wide embedding dimension.
func (s *SQLiteStore) Dimensions() int {
	return s.dimensions
}

// InsertChunk persists one chunk row.
func (s *SQLiteStore) InsertChunk(ctx context.Context, chunk *models.ChunkRecord) error {
	if len(chunk.Embedding) != s.dimensions {
		return fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(chunk.Embedding), s.dimensions)
	}
	metadataJSON, err := json.Marshal(chunk.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chunks (document_id, chunk_index, content, embedding, metadata)
		 VALUES (?, ?, ?, ?, ?)`,
		chunk.DocumentID, chunk.ChunkIndex, chunk.Content, vector.Encode(chunk.Embedding), string(metadataJSON),
	)
	return err
}

// Search scans every chunk row, scores it against the query embedding by
// inner product, and returns the top k by descending score. Sorting is
// stable, so equal scores keep insertion order.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, k int) ([]*models.SearchResult, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, embedding, metadata FROM chunks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.SearchResult
	for rows.Next() {
		var content, metadataJSON string
		var blob []byte
		if err := rows.Scan(&content, &blob, &metadataJSON); err != nil {
			return nil, err
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		var meta models.DocumentMeta
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		results = append(results, &models.SearchResult{
			Content: content,
			Meta:    meta,
			Score:   vector.InnerProduct(query, emb),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// ChunksByDocumentID returns all chunks for a document ordered by chunk_index.
func (s *SQLiteStore) ChunksByDocumentID(ctx context.Context, documentID string) ([]*models.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, chunk_index, content, embedding, metadata
		 FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.ChunkRecord
	for rows.Next() {
		var chunk models.ChunkRecord
		var blob []byte
		var metadataJSON string
		if err := rows.Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &blob, &metadataJSON); err != nil {
			return nil, err
		}
		if chunk.Embedding, err = vector.Decode(blob); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// DocumentByID returns the document summary built from its first-seen chunk.
func (s *SQLiteStore) DocumentByID(ctx context.Context, documentID string) (*models.DocumentSummary, error) {
	var metadataJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata FROM chunks WHERE document_id = ? ORDER BY id LIMIT 1`,
		documentID,
	).Scan(&metadataJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	if err != nil {
		return nil, err
	}
	var meta models.DocumentMeta
	if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return summaryFromMeta(&meta), nil
}

// DeleteByDocumentID removes every chunk of the document. Idempotent:
// deleting an unknown ID returns 0.
func (s *SQLiteStore) DeleteByDocumentID(ctx context.Context, documentID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListDocuments scans all chunks in insertion order, keeps the first-seen
// metadata per document ID, and returns summaries ordered by upload date
// then document ID.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*models.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, metadata FROM chunks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var summaries []*models.DocumentSummary
	for rows.Next() {
		var docID, metadataJSON string
		if err := rows.Scan(&docID, &metadataJSON); err != nil {
			return nil, err
		}
		if seen[docID] {
			continue
		}
		seen[docID] = true
		var meta models.DocumentMeta
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		summaries = append(summaries, summaryFromMeta(&meta))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UploadDate.Equal(summaries[j].UploadDate) {
			return summaries[i].UploadDate.Before(summaries[j].UploadDate)
		}
		return summaries[i].DocumentID < summaries[j].DocumentID
	})
	return summaries, nil
}

// CountDocuments returns the number of distinct documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT document_id) FROM chunks`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func summaryFromMeta(meta *models.DocumentMeta) *models.DocumentSummary {
	return &models.DocumentSummary{
		DocumentID:  meta.DocumentID,
		FileName:    meta.FileName,
		FileType:    meta.FileType,
		FileSize:    meta.FileSize,
		UploadDate:  meta.UploadDate,
		TotalChunks: meta.TotalChunks,
		FileURL:     meta.FileURL,
	}
}
