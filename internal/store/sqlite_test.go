package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/vector"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testChunk(docID string, index int, content string, emb []float32) *models.ChunkRecord {
	vector.Normalize(emb)
	return &models.ChunkRecord{
		DocumentID: docID,
		ChunkIndex: index,
		Content:    content,
		Embedding:  emb,
		Meta: models.DocumentMeta{
			DocumentID: docID,
			FileName:   docID + ".txt",
			FileType:   "txt",
			FileSize:   int64(len(content)),
			UploadDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(index) * time.Minute),
			ChunkIndex: index,
		},
	}
}

func TestSQLiteStore_InsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, content := range []string{"first", "second", "third"} {
		if err := s.InsertChunk(ctx, testChunk("d1", i, content, []float32{1, 0, float32(i)})); err != nil {
			t.Fatal(err)
		}
	}

	chunks, err := s.ChunksByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, ch.ChunkIndex)
		}
	}
	if chunks[0].Content != "first" || chunks[2].Content != "third" {
		t.Errorf("chunk order wrong: %q ... %q", chunks[0].Content, chunks[2].Content)
	}
	if len(chunks[0].Embedding) != 3 {
		t.Errorf("embedding not round-tripped: %v", chunks[0].Embedding)
	}
}

func TestSQLiteStore_InsertDimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	err := s.InsertChunk(context.Background(), testChunk("d1", 0, "c", []float32{1, 0}))
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSQLiteStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Three vectors with decreasing similarity to the query (1,0,0).
	inserts := []struct {
		content string
		emb     []float32
	}{
		{"exact", []float32{1, 0, 0}},
		{"close", []float32{1, 0.5, 0}},
		{"far", []float32{0, 0, 1}},
	}
	for i, in := range inserts {
		if err := s.InsertChunk(ctx, testChunk("d1", i, in.content, in.emb)); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (k=2), got %d", len(results))
	}
	if results[0].Content != "exact" || results[1].Content != "close" {
		t.Errorf("ranking wrong: %q, %q", results[0].Content, results[1].Content)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores not descending: %f < %f", results[0].Score, results[1].Score)
	}
}

func TestSQLiteStore_SearchTiesStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Identical embeddings: insertion order must break the tie.
	for i := 0; i < 3; i++ {
		chunk := testChunk("d1", i, fmt.Sprintf("chunk-%d", i), []float32{1, 0, 0})
		if err := s.InsertChunk(ctx, chunk); err != nil {
			t.Fatal(err)
		}
	}
	results, err := s.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if want := fmt.Sprintf("chunk-%d", i); r.Content != want {
			t.Errorf("position %d: got %q, want %q", i, r.Content, want)
		}
	}
}

func TestSQLiteStore_SearchEmptyStore(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty store should return no results, got %d", len(results))
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = s.InsertChunk(ctx, testChunk("d1", i, "c", []float32{1, 0, 0}))
	}
	_ = s.InsertChunk(ctx, testChunk("d2", 0, "other", []float32{0, 1, 0}))

	n, err := s.DeleteByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	chunks, _ := s.ChunksByDocumentID(ctx, "d1")
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks after delete, got %d", len(chunks))
	}

	// Second delete is idempotent.
	n, err = s.DeleteByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second delete should return 0, got %d", n)
	}

	// Other document untouched.
	chunks, _ = s.ChunksByDocumentID(ctx, "d2")
	if len(chunks) != 1 {
		t.Errorf("d2 should still have 1 chunk, got %d", len(chunks))
	}
}

func TestSQLiteStore_ListDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// d2 uploaded before d1, both with multiple chunks.
	c := testChunk("d2", 0, "c", []float32{1, 0, 0})
	c.Meta.UploadDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	c.Meta.TotalChunks = 1
	_ = s.InsertChunk(ctx, c)

	for i := 0; i < 2; i++ {
		c := testChunk("d1", i, "c", []float32{0, 1, 0})
		c.Meta.UploadDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		c.Meta.TotalChunks = 2
		_ = s.InsertChunk(ctx, c)
	}

	list, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries (deduplicated), got %d", len(list))
	}
	if list[0].DocumentID != "d2" || list[1].DocumentID != "d1" {
		t.Errorf("order by upload date wrong: %s, %s", list[0].DocumentID, list[1].DocumentID)
	}
	if list[1].TotalChunks != 2 {
		t.Errorf("TotalChunks: got %d, want 2", list[1].TotalChunks)
	}
}

func TestSQLiteStore_DocumentByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.DocumentByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = s.InsertChunk(ctx, testChunk("d1", 0, "c", []float32{1, 0, 0}))
	got, err := s.DocumentByID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != "d1.txt" {
		t.Errorf("got %+v", got)
	}
}

func TestSQLiteStore_Counts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docs, _ := s.CountDocuments(ctx)
	chunks, _ := s.CountChunks(ctx)
	if docs != 0 || chunks != 0 {
		t.Errorf("empty store counts: %d docs, %d chunks", docs, chunks)
	}

	_ = s.InsertChunk(ctx, testChunk("d1", 0, "c", []float32{1, 0, 0}))
	_ = s.InsertChunk(ctx, testChunk("d1", 1, "c", []float32{1, 0, 0}))
	_ = s.InsertChunk(ctx, testChunk("d2", 0, "c", []float32{1, 0, 0}))

	docs, _ = s.CountDocuments(ctx)
	chunks, _ = s.CountChunks(ctx)
	if docs != 2 {
		t.Errorf("expected 2 documents, got %d", docs)
	}
	if chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", chunks)
	}
}
