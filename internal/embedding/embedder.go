// Package embedding produces vector embeddings for text via an external
// embedding service.
package embedding

import (
	"context"
	"errors"
)

// ErrService indicates the embedding service call failed (connection refused,
// model error, token limit exceeded, timeout). Failures are surfaced to the
// caller unmodified; no retries happen here.
var ErrService = errors.New("embedding service error")

// Embedder produces vector embeddings for text. Embeddings are unit-normalized
// so that inner product equals cosine similarity. Implementations must not
// mutate or truncate the input text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
