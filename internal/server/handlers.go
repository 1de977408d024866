package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kotae-ai/kotae/internal/blob"
	"github.com/kotae-ai/kotae/internal/extract"
	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/pipeline"
	"github.com/kotae-ai/kotae/internal/store"
	"go.uber.org/zap"
)

// maxUploadBytes caps multipart upload memory buffering; larger files spill to
// temp files per net/http semantics.
const maxUploadBytes = 32 << 20

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	s.logger.Debug("ingest request", zap.String("file_name", header.Filename), zap.Int("bytes", len(content)))

	result, err := s.ingestor.Ingest(r.Context(), header.Filename, content)
	if err != nil {
		s.logger.Error("ingestion failed", zap.String("file_name", header.Filename), zap.Error(err))
		s.respondError(w, statusFromError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.String("query", req.Query))

	answer, err := s.retriever.Ask(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, statusFromError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []*models.DocumentSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": summaries})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := s.store.DocumentByID(r.Context(), id)
	if err != nil {
		s.respondError(w, statusFromError(err), err.Error())
		return
	}
	chunks, err := s.store.ChunksByDocumentID(r.Context(), id)
	if err != nil {
		s.logger.Error("get document chunks failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var text strings.Builder
	for _, c := range chunks {
		text.WriteString(c.Content)
	}
	s.respondJSON(w, http.StatusOK, &models.DocumentView{
		DocumentID:  summary.DocumentID,
		FileName:    summary.FileName,
		FileType:    summary.FileType,
		FileSize:    summary.FileSize,
		TotalChunks: summary.TotalChunks,
		Text:        text.String(),
		FileURL:     summary.FileURL,
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := s.store.DocumentByID(r.Context(), id)
	if err != nil {
		s.respondError(w, statusFromError(err), err.Error())
		return
	}
	key := id
	if summary.FileType != "" {
		key += "." + summary.FileType
	}
	content, err := s.blobs.Get(key)
	if err != nil {
		s.logger.Error("read stored file failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusNotFound, "stored file not found")
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") == "1" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentTypeFor(summary.FileType))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, summary.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	n, err := s.ingestor.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("deletion failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, statusFromError(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "chunks_removed": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.store.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents": docCount,
		"chunks":    chunkCount,
	}
	resp["config"] = map[string]interface{}{
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"generation_model":     s.config.Generation.Model,
		"chunk_size":           s.config.Ingest.ChunkSize,
		"chunk_overlap":        s.config.Ingest.ChunkOverlap,
		"top_k":                s.config.Ingest.TopK,
		"database_path":        s.config.Storage.DatabasePath,
		"files_dir":            s.config.Storage.FilesDir,
	}
	diskBytes, err := blob.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.FilesDir)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFromError maps pipeline and storage sentinels to HTTP status codes.
// Unsupported formats, unreadable documents, empty documents, and blank
// queries are client errors; unknown IDs are 404; everything else
// (storage, embedding, generation) is a server error.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrExtraction),
		errors.Is(err, pipeline.ErrEmptyContent),
		errors.Is(err, pipeline.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func contentTypeFor(fileType string) string {
	switch strings.ToLower(fileType) {
	case "pdf":
		return "application/pdf"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
