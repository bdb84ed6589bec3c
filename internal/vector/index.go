// Package vector provides fixed-dimension vector indexes with k-nearest-neighbor search.
package vector

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Metric names the scoring family an index is built for.
type Metric string

const (
	// MetricInnerProduct scores by inner product. With unit-length operands this is cosine similarity.
	MetricInnerProduct Metric = "inner_product"
	// MetricL2 scores by squared Euclidean distance (lower is closer).
	MetricL2 Metric = "l2"
)

// ParseMetric maps a config value to a Metric. Empty defaults to inner product.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricInnerProduct, "", "ip", "cosine":
		return MetricInnerProduct, nil
	case MetricL2:
		return MetricL2, nil
	default:
		return "", fmt.Errorf("unknown metric: %s (supported: inner_product, l2)", s)
	}
}

// Better reports whether raw score a ranks ahead of raw score b under m.
func (m Metric) Better(a, b float64) bool {
	if m == MetricL2 {
		return a < b
	}
	return a > b
}

// Cosine converts a raw score computed under m for two unit-length vectors into cosine similarity.
// For unit vectors ||a-b||^2 = 2 - 2cos(a,b).
func (m Metric) Cosine(raw float64) float64 {
	if m == MetricL2 {
		return 1 - raw/2
	}
	return raw
}

// VectorIndex is an append-only collection of vectors addressed by insertion position.
// Implementations do not normalize; callers pass unit-length vectors for cosine scoring.
type VectorIndex interface {
	// Add appends vectors at the next positions. Every vector must match Dimensions().
	Add(ctx context.Context, vectors ...[]float32) error
	// Search returns up to k results ordered best-first. k is clamped to Size().
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	// Save writes the index to path, replacing any existing artifact.
	Save(path string) error
	Size() int
	Dimensions() int
	Metric() Metric
	Type() string
	Close() error
}

// Result is a single search hit. Score is the raw metric value (see Metric.Cosine).
type Result struct {
	Position int
	Score    float64
}
