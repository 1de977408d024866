// Package pipeline orchestrates document ingestion and question answering over
// the extraction, chunking, embedding, storage, and generation components.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kotae-ai/kotae/internal/blob"
	"github.com/kotae-ai/kotae/internal/chunk"
	"github.com/kotae-ai/kotae/internal/embedding"
	"github.com/kotae-ai/kotae/internal/extract"
	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrEmptyContent is returned when extraction yields no usable text.
	ErrEmptyContent = errors.New("document contains no extractable text")

	// ErrInvalidQuery is returned for blank retrieval queries.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrStorageUpload is returned when the raw file cannot be stored.
	ErrStorageUpload = errors.New("failed to store uploaded file")

	// ErrStorageWrite is returned when a chunk row cannot be persisted.
	ErrStorageWrite = errors.New("failed to persist chunk")
)

// Ingestor runs the ingestion pipeline: mint an ID, store the raw file,
// extract text, chunk it, and embed+insert each chunk in order.
type Ingestor struct {
	blobs     blob.Store
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	embedder  embedding.Embedder
	store     store.Store
	logger    *zap.Logger // optional; when set, logs ingestion events
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithIngestLogger sets a logger for ingestion events.
func WithIngestLogger(l *zap.Logger) IngestorOption {
	return func(in *Ingestor) { in.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(
	blobs blob.Store,
	extractor *extract.Extractor,
	chunker *chunk.Chunker,
	embedder embedding.Embedder,
	st store.Store,
	opts ...IngestorOption,
) *Ingestor {
	in := &Ingestor{
		blobs:     blobs,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     st,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest processes one uploaded document. The raw file is stored first under
// "<id><ext>", so a failure in any later stage leaves the original upload
// retrievable. Chunks are embedded and inserted strictly in index order; a
// failure mid-loop leaves the already-inserted prefix in place (the caller may
// re-upload, or Delete the partial document).
func (in *Ingestor) Ingest(ctx context.Context, fileName string, content []byte) (*models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	docID := uuid.New().String()
	key := docID + ext

	if err := in.blobs.Put(key, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUpload, err)
	}

	text, err := in.extractor.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, fileName)
	}

	chunks := in.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, fileName)
	}

	uploadDate := time.Now().UTC()
	fileURL := in.blobs.URL(key)
	for i, c := range chunks {
		vec, err := in.embedder.Embed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		rec := &models.ChunkRecord{
			DocumentID: docID,
			ChunkIndex: i,
			Content:    c,
			Embedding:  vec,
			Meta: models.DocumentMeta{
				DocumentID:  docID,
				FileName:    fileName,
				FileType:    strings.TrimPrefix(ext, "."),
				FileSize:    int64(len(content)),
				UploadDate:  uploadDate,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
				FilePath:    key,
				FileURL:     fileURL,
			},
		}
		if err := in.store.InsertChunk(ctx, rec); err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", ErrStorageWrite, i, err)
		}
	}

	if in.logger != nil {
		in.logger.Info("document ingested",
			zap.String("document_id", docID),
			zap.String("file_name", fileName),
			zap.Int("chunks", len(chunks)))
	}
	return &models.IngestResult{
		DocumentID: docID,
		FileName:   fileName,
		ChunkCount: len(chunks),
		TextLength: utf8.RuneCountInString(text),
		FileURL:    fileURL,
	}, nil
}

// Delete removes a document's chunks and its stored raw file. Deleting an
// unknown ID is not an error; it returns a zero count.
func (in *Ingestor) Delete(ctx context.Context, documentID string) (int64, error) {
	sum, err := in.store.DocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n, err := in.store.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	key := documentID
	if sum.FileType != "" {
		key += "." + sum.FileType
	}
	if err := in.blobs.Delete(key); err != nil {
		return n, fmt.Errorf("%w: %v", ErrStorageUpload, err)
	}
	if in.logger != nil {
		in.logger.Info("document deleted",
			zap.String("document_id", documentID),
			zap.Int64("chunks_removed", n))
	}
	return n, nil
}
