package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/textintel/internal/llm"
)

// OpenAIEmbedder requests embeddings from the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client     *llm.Client
	dimensions int
}

// NewOpenAIEmbedder returns an embedder that asks the API for vectors of the given length.
func NewOpenAIEmbedder(client *llm.Client, dimensions int) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("openai embedder: nil client")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("openai embedder: dimensions must be positive, got %d", dimensions)
	}
	return &OpenAIEmbedder{client: client, dimensions: dimensions}, nil
}

// Embed returns the embedding for text. Newlines are flattened to spaces.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = strings.ReplaceAll(t, "\n", " ")
	}
	vecs, err := e.client.Embed(ctx, inputs, e.dimensions)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	return vecs, nil
}

// Dimensions returns the requested embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
