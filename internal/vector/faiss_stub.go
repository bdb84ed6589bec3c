//go:build !faiss || !cgo
// +build !faiss !cgo

package vector

import (
	"context"
	"fmt"
)

// FAISSIndex is a stub that returns an error when FAISS is not available.
// Build with -tags=faiss to enable FAISS support.
type FAISSIndex struct{}

var errFAISSUnavailable = fmt.Errorf("FAISS not available: build with -tags=faiss and install FAISS library")

// NewFAISSIndex returns an error because FAISS is not available.
func NewFAISSIndex(metric Metric, dimensions int) (*FAISSIndex, error) {
	return nil, errFAISSUnavailable
}

func loadFAISS(path string, metric Metric, dimensions int) (VectorIndex, error) {
	return nil, errFAISSUnavailable
}

// Add is not implemented without FAISS.
func (f *FAISSIndex) Add(ctx context.Context, vectors ...[]float32) error {
	return errFAISSUnavailable
}

// Search is not implemented without FAISS.
func (f *FAISSIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	return nil, errFAISSUnavailable
}

// Save is not implemented without FAISS.
func (f *FAISSIndex) Save(path string) error {
	return errFAISSUnavailable
}

// Size returns 0 without FAISS.
func (f *FAISSIndex) Size() int { return 0 }

// Dimensions returns 0 without FAISS.
func (f *FAISSIndex) Dimensions() int { return 0 }

// Metric returns the empty metric without FAISS.
func (f *FAISSIndex) Metric() Metric { return "" }

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}

// Close is a no-op without FAISS.
func (f *FAISSIndex) Close() error {
	return nil
}
