package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/vector"
	"github.com/hyperjump/textintel/pkg/utils"
)

// ErrEmptyText is returned for blank documents and queries.
var ErrEmptyText = errors.New("text cannot be empty")

// ErrInvalidText is returned for text that is not valid UTF-8. The document artifact
// could not store it unchanged.
var ErrInvalidText = fmt.Errorf("%w: text is not valid UTF-8", models.ErrInvalidInput)

// ErrDimensionMismatch is returned when the embedder produces a vector of the wrong length.
var ErrDimensionMismatch = vector.ErrDimensionMismatch

// ErrInvalidEmbedding is returned when the embedder produces a NaN or infinite component.
var ErrInvalidEmbedding = errors.New("embedding contains non-finite values")

// embedText embeds text and rescales the vector to unit length.
// Runs outside the engine lock.
func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return e.prepareVector(vec)
}

// prepareVector checks the dimension and values and returns a normalized copy.
func (e *Engine) prepareVector(vec []float32) ([]float32, error) {
	if len(vec) != e.cfg.Dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, e.cfg.Dimensions, len(vec))
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: component %d is %v", ErrInvalidEmbedding, i, v)
		}
	}
	return utils.NormalizeL2(vec), nil
}
