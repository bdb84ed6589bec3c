package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FlatIndex is an exact brute-force index. Every query scans all stored vectors.
type FlatIndex struct {
	metric     Metric
	dimensions int
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewInnerProductIndex creates a flat index scored by inner product.
func NewInnerProductIndex(dimensions int) (*FlatIndex, error) {
	return newFlatIndex(MetricInnerProduct, dimensions)
}

// NewL2Index creates a flat index scored by squared L2 distance.
func NewL2Index(dimensions int) (*FlatIndex, error) {
	return newFlatIndex(MetricL2, dimensions)
}

func newFlatIndex(metric Metric, dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{
		metric:     metric,
		dimensions: dimensions,
		vectors:    make([][]float32, 0),
	}, nil
}

// Type returns the index type identifier.
func (f *FlatIndex) Type() string {
	return string(IndexTypeFlat)
}

// Metric returns the scoring family.
func (f *FlatIndex) Metric() Metric {
	return f.metric
}

// Dimensions returns the vector length accepted by the index.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Add appends copies of vectors. Nothing is appended if any vector has the wrong length.
func (f *FlatIndex) Add(ctx context.Context, vectors ...[]float32) error {
	for _, vec := range vectors {
		if len(vec) != f.dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vec), f.dimensions)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, vec := range vectors {
		cp := make([]float32, f.dimensions)
		copy(cp, vec)
		f.vectors = append(f.vectors, cp)
	}
	return nil
}

// Search returns the top-k positions best-first. Ties keep insertion order.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := len(f.vectors)
	if k <= 0 || n == 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	results := make([]Result, n)
	for i, vec := range f.vectors {
		results[i] = Result{Position: i, Score: f.score(query, vec)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return f.metric.Better(results[i].Score, results[j].Score)
	})
	return results[:k], nil
}

func (f *FlatIndex) score(a, b []float32) float64 {
	if f.metric == MetricL2 {
		return SquaredL2(a, b)
	}
	return InnerProduct(a, b)
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// vectorAt returns a copy of the vector stored at position.
func (f *FlatIndex) vectorAt(position int) ([]float32, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if position < 0 || position >= len(f.vectors) {
		return nil, false
	}
	out := make([]float32, f.dimensions)
	copy(out, f.vectors[position])
	return out, true
}

// Close is a no-op for FlatIndex.
func (f *FlatIndex) Close() error {
	return nil
}
