// Package embedding turns text into fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by providers whose native runtime is not compiled in.
var ErrUnavailable = errors.New("embedding provider not available in this build")

// Embedder produces vector embeddings for text.
// Implementations must return vectors of exactly Dimensions() length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// embedEach calls Embed for each text in order.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
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
