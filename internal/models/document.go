// Package models defines core data structures for documents, chunks, and answers.
package models

import "time"

// DocumentMeta is the descriptive metadata stored alongside every chunk of a
// document. All fields are set at ingestion time and never change.
type DocumentMeta struct {
	DocumentID  string    `json:"document_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadDate  time.Time `json:"upload_date"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	FilePath    string    `json:"file_path"`
	FileURL     string    `json:"file_url"`
}

// ChunkRecord is one persisted unit of retrievable text: a contiguous segment
// of a document's extracted text plus its embedding vector and metadata.
// (DocumentID, ChunkIndex) uniquely identifies a chunk and defines
// reconstruction order.
type ChunkRecord struct {
	DocumentID string       `json:"document_id"`
	ChunkIndex int          `json:"chunk_index"`
	Content    string       `json:"content"`
	Embedding  []float32    `json:"-"`
	Meta       DocumentMeta `json:"metadata"`
}

// DocumentSummary is one row of the deduplicated document listing, built from
// the first-seen chunk metadata per document ID.
type DocumentSummary struct {
	DocumentID  string    `json:"document_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadDate  time.Time `json:"upload_date"`
	TotalChunks int       `json:"total_chunks"`
	FileURL     string    `json:"file_url"`
}
