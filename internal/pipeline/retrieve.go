package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/kotae-ai/kotae/internal/embedding"
	"github.com/kotae-ai/kotae/internal/generation"
	"github.com/kotae-ai/kotae/internal/models"
	"github.com/kotae-ai/kotae/internal/store"
	"go.uber.org/zap"
)

// contextDelimiter separates retrieved chunks in the assembled context text.
const contextDelimiter = "\n\n---\n\n"

// Retriever runs the retrieval pipeline: embed the query, find the nearest
// chunks, and generate an answer grounded in them.
type Retriever struct {
	embedder  embedding.Embedder
	store     store.Store
	generator generation.Generator
	topK      int
	logger    *zap.Logger // optional; when set, logs retrieval events
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithRetrieveLogger sets a logger for retrieval events.
func WithRetrieveLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// NewRetriever creates a retriever with the given dependencies. Non-positive
// topK falls back to 5.
func NewRetriever(
	embedder embedding.Embedder,
	st store.Store,
	generator generation.Generator,
	topK int,
	opts ...RetrieverOption,
) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	r := &Retriever{
		embedder:  embedder,
		store:     st,
		generator: generator,
		topK:      topK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ask answers a question from the stored documents. A blank query fails with
// ErrInvalidQuery. An empty store is not an error: the generator receives
// empty context and answers that it has no relevant information, and Sources
// is an empty slice.
func (r *Retriever) Ask(ctx context.Context, query string) (*models.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := r.store.Search(ctx, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = res.Content
	}
	contextText := strings.Join(parts, contextDelimiter)

	answer, err := r.generator.Generate(ctx, query, contextText)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("query answered",
			zap.Int("sources", len(results)),
			zap.Int("context_chars", len(contextText)))
	}
	if results == nil {
		results = []*models.SearchResult{}
	}
	return &models.Answer{Answer: answer, Sources: results}, nil
}
