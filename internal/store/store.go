// Package store persists chunk/embedding/metadata tuples and serves
// nearest-neighbor retrieval over them.
package store

import (
	"context"
	"errors"

	"github.com/kotae-ai/kotae/internal/models"
)

// ErrNotFound is returned when no chunks exist for a document ID.
var ErrNotFound = errors.New("document not found")

// Store defines chunk persistence and retrieval. Each InsertChunk call is
// independent; the store guarantees no atomicity across the chunks of one
// document (the ingestion pipeline compensates with its durable-prefix
// policy and idempotent deletion).
type Store interface {
	// InsertChunk persists one chunk row. The embedding dimension must match
	// the store-wide dimension.
	InsertChunk(ctx context.Context, chunk *models.ChunkRecord) error

	// Search returns up to k chunks ordered by descending similarity to the
	// query embedding. Ties are broken by insertion order.
	Search(ctx context.Context, query []float32, k int) ([]*models.SearchResult, error)

	// ChunksByDocumentID returns every chunk of the document ordered by
	// chunk index ascending. Concatenating the contents in this order
	// reconstructs the extracted text (overlap included).
	ChunksByDocumentID(ctx context.Context, documentID string) ([]*models.ChunkRecord, error)

	// DocumentByID returns the document's first-seen chunk metadata as a
	// summary, or ErrNotFound.
	DocumentByID(ctx context.Context, documentID string) (*models.DocumentSummary, error)

	// DeleteByDocumentID removes every chunk of the document and returns the
	// number removed. Deleting an unknown ID returns 0, not an error.
	DeleteByDocumentID(ctx context.Context, documentID string) (int64, error)

	// ListDocuments returns one summary per distinct document, deduplicated
	// by first-seen metadata, ordered by upload date then document ID.
	ListDocuments(ctx context.Context) ([]*models.DocumentSummary, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
