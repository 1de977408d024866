package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kotae-ai/kotae/internal/chunk"
	"github.com/kotae-ai/kotae/internal/embedding"
	"github.com/kotae-ai/kotae/internal/extract"
	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/store"
)

// memBlob is an in-memory blob.Store for tests.
type memBlob struct {
	files   map[string][]byte
	failPut bool
}

func newMemBlob() *memBlob {
	return &memBlob{files: make(map[string][]byte)}
}

func (m *memBlob) Put(key string, content []byte) error {
	if m.failPut {
		return errors.New("disk full")
	}
	m.files[key] = content
	return nil
}

func (m *memBlob) Get(key string) ([]byte, error) {
	content, ok := m.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return content, nil
}

func (m *memBlob) Delete(key string) error {
	delete(m.files, key)
	return nil
}

func (m *memBlob) URL(key string) string {
	return "/api/v1/files/" + key
}

// failingStore delegates to an inner store but fails InsertChunk after
// allowInserts successful calls.
type failingStore struct {
	store.Store
	allowInserts int
	inserts      int
}

func (f *failingStore) InsertChunk(ctx context.Context, c *models.ChunkRecord) error {
	if f.inserts >= f.allowInserts {
		return errors.New("database locked")
	}
	f.inserts++
	return f.Store.InsertChunk(ctx, c)
}

// failingEmbedder fails on the (allowEmbeds+1)-th Embed call.
type failingEmbedder struct {
	embedding.Embedder
	allowEmbeds int
	embeds      int
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embeds >= f.allowEmbeds {
		return nil, fmt.Errorf("%w: connection refused", embedding.ErrService)
	}
	f.embeds++
	return f.Embedder.Embed(ctx, text)
}

const testDims = 8

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "chunks.db"), testDims)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestIngestor(t *testing.T) (*Ingestor, *store.SQLiteStore, *memBlob) {
	t.Helper()
	s := newTestStore(t)
	blobs := newMemBlob()
	in := NewIngestor(blobs, extract.NewExtractor(), chunk.NewChunker(800, 100), embedding.NewMockEmbedder(testDims), s)
	return in, s, blobs
}

func TestIngest_singleChunk(t *testing.T) {
	in, s, blobs := newTestIngestor(t)
	ctx := context.Background()

	res, err := in.Ingest(ctx, "notes.txt", []byte("The capital of France is Paris."))
	if err != nil {
		t.Fatal(err)
	}
	if res.DocumentID == "" {
		t.Error("document ID should be minted")
	}
	if res.ChunkCount != 1 {
		t.Errorf("chunk count = %d, want 1", res.ChunkCount)
	}
	if res.FileName != "notes.txt" {
		t.Errorf("file name = %q", res.FileName)
	}
	if res.FileURL != "/api/v1/files/"+res.DocumentID+".txt" {
		t.Errorf("file URL = %q", res.FileURL)
	}

	if _, err := blobs.Get(res.DocumentID + ".txt"); err != nil {
		t.Error("raw file should be stored")
	}
	chunks, err := s.ChunksByDocumentID(ctx, res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("stored chunks = %d, want 1", len(chunks))
	}
	meta := chunks[0].Meta
	if meta.FileType != "txt" || meta.TotalChunks != 1 || meta.ChunkIndex != 0 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.FileSize != int64(len("The capital of France is Paris.")) {
		t.Errorf("file size = %d", meta.FileSize)
	}
	if meta.UploadDate.IsZero() {
		t.Error("upload date should be set")
	}
}

func TestIngest_splitsLongText(t *testing.T) {
	in, s, _ := newTestIngestor(t)
	ctx := context.Background()

	res, err := in.Ingest(ctx, "long.txt", []byte(strings.Repeat("a", 1500)))
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunkCount != 2 {
		t.Fatalf("chunk count = %d, want 2", res.ChunkCount)
	}
	if res.TextLength != 1500 {
		t.Errorf("text length = %d, want 1500", res.TextLength)
	}
	chunks, err := s.ChunksByDocumentID(ctx, res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks[0].Content) != 800 {
		t.Errorf("first chunk length = %d, want 800", len(chunks[0].Content))
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.Meta.TotalChunks != 2 {
			t.Errorf("chunk %d total = %d, want 2", i, c.Meta.TotalChunks)
		}
	}
}

func TestIngest_unsupportedFormatKeepsBlob(t *testing.T) {
	in, s, blobs := newTestIngestor(t)
	ctx := context.Background()

	_, err := in.Ingest(ctx, "data.bin", []byte{0x00, 0x01})
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	// The raw upload stays durable even when extraction rejects the format.
	if len(blobs.files) != 1 {
		t.Errorf("blob count = %d, want 1", len(blobs.files))
	}
	n, err := s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("chunk count = %d, want 0", n)
	}
}

func TestIngest_emptyContent(t *testing.T) {
	in, _, blobs := newTestIngestor(t)

	_, err := in.Ingest(context.Background(), "blank.txt", []byte("   \n\t  "))
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if len(blobs.files) != 1 {
		t.Error("raw file should remain stored")
	}
}

func TestIngest_uploadFailure(t *testing.T) {
	s := newTestStore(t)
	blobs := newMemBlob()
	blobs.failPut = true
	in := NewIngestor(blobs, extract.NewExtractor(), chunk.NewChunker(800, 100), embedding.NewMockEmbedder(testDims), s)

	_, err := in.Ingest(context.Background(), "notes.txt", []byte("hello"))
	if !errors.Is(err, ErrStorageUpload) {
		t.Fatalf("expected ErrStorageUpload, got %v", err)
	}
	n, err := s.CountChunks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("chunk count = %d, want 0", n)
	}
}

func TestIngest_insertFailureLeavesPrefix(t *testing.T) {
	s := newTestStore(t)
	fs := &failingStore{Store: s, allowInserts: 1}
	in := NewIngestor(newMemBlob(), extract.NewExtractor(), chunk.NewChunker(800, 100), embedding.NewMockEmbedder(testDims), fs)
	ctx := context.Background()

	_, err := in.Ingest(ctx, "long.txt", []byte(strings.Repeat("a", 1500)))
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
	// Exactly the first chunk survived.
	n, err := s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("chunk count = %d, want 1", n)
	}
}

func TestIngest_embedFailurePropagates(t *testing.T) {
	s := newTestStore(t)
	fe := &failingEmbedder{Embedder: embedding.NewMockEmbedder(testDims), allowEmbeds: 1}
	in := NewIngestor(newMemBlob(), extract.NewExtractor(), chunk.NewChunker(800, 100), fe, s)
	ctx := context.Background()

	_, err := in.Ingest(ctx, "long.txt", []byte(strings.Repeat("a", 1500)))
	if !errors.Is(err, embedding.ErrService) {
		t.Fatalf("expected embedding.ErrService, got %v", err)
	}
	n, err := s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("chunk count = %d, want 1", n)
	}
}

func TestDelete(t *testing.T) {
	in, s, blobs := newTestIngestor(t)
	ctx := context.Background()

	res, err := in.Ingest(ctx, "notes.txt", []byte("some text to remove"))
	if err != nil {
		t.Fatal(err)
	}

	n, err := in.Delete(ctx, res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := blobs.Get(res.DocumentID + ".txt"); err == nil {
		t.Error("raw file should be gone")
	}
	if _, err := s.DocumentByID(ctx, res.DocumentID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Deleting again (or an unknown ID) is not an error.
	n, err = in.Delete(ctx, res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second delete = %d, want 0", n)
	}
}
