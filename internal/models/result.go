package models

// IngestResult reports a completed ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
	TextLength int    `json:"text_length"`
	FileURL    string `json:"file_url"`
}

// SearchResult is one retrieved chunk with its similarity score. Ephemeral:
// produced by a retrieval call and discarded after the response is returned.
type SearchResult struct {
	Content string       `json:"content"`
	Meta    DocumentMeta `json:"metadata"`
	Score   float64      `json:"score"`
}

// Answer is the result of one retrieval call: the generated answer plus the
// ranked source chunks it was conditioned on. Sources are always returned so
// downstream consumers can attribute answers even when a UI does not render
// them.
type Answer struct {
	Answer  string          `json:"answer"`
	Sources []*SearchResult `json:"sources"`
}

// DocumentView is the metadata endpoint response for one document: the full
// extracted text reconstructed by concatenating chunks in index order.
// Reconstruction does not de-duplicate chunk overlap.
type DocumentView struct {
	DocumentID  string `json:"document_id"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	TotalChunks int    `json:"total_chunks"`
	Text        string `json:"text"`
	FileURL     string `json:"file_url"`
}
