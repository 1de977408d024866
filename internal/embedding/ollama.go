package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/kotae-ai/kotae/internal/vector"
)

// OllamaEmbedder produces embeddings through an Ollama server.
type OllamaEmbedder struct {
	llm        *ollama.LLM
	dimensions int
	timeout    time.Duration
}

// NewOllamaEmbedder creates an embedder backed by the Ollama model at baseURL.
// dimensions is the store-wide embedding dimension; every returned vector is
// validated against it. timeout bounds each service call.
func NewOllamaEmbedder(baseURL, model string, dimensions int, timeout time.Duration) (*OllamaEmbedder, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize ollama embedder: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		llm:        llm,
		dimensions: dimensions,
		timeout:    timeout,
	}, nil
}

// Embed returns the unit-normalized embedding for text. The input is passed to
// the service as-is; an upstream token-limit rejection is reported as a
// failure, never worked around by truncation.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	vecs, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrService, len(vecs))
	}
	emb := vecs[0]
	if e.dimensions > 0 && len(emb) != e.dimensions {
		return nil, fmt.Errorf("%w: dimension mismatch: got %d, expected %d", ErrService, len(emb), e.dimensions)
	}
	vector.Normalize(emb)
	return emb, nil
}

// EmbedBatch embeds texts strictly one at a time, in order. The first failure
// aborts the batch.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the Ollama client holds no persistent resources.
func (e *OllamaEmbedder) Close() error {
	return nil
}
