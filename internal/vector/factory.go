package vector

import (
	"fmt"
	"os"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeFlat uses the pure Go brute-force index. Exact results; fine for modest corpora.
	IndexTypeFlat IndexType = "flat"
	// IndexTypeFAISS uses FAISS flat indexes through cgo.
	// Requires FAISS library and build tag -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewVectorIndex creates an empty index of the specified type and metric.
// Supported types: "flat" (default, "memory" is accepted as an alias), "faiss".
func NewVectorIndex(indexType string, metric Metric, dimensions int) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeFlat, "memory", "":
		idx, err := newFlatIndex(metric, dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case IndexTypeFAISS:
		idx, err := NewFAISSIndex(metric, dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: flat, faiss)", indexType)
	}
}

// LoadIndex reads the artifact at path. A missing file yields a fresh empty index of the
// configured metric. An artifact built for another metric or dimension returns a
// *FormatMismatchError and no index.
func LoadIndex(indexType string, path string, metric Metric, dimensions int) (VectorIndex, error) {
	if path == "" {
		return NewVectorIndex(indexType, metric, dimensions)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewVectorIndex(indexType, metric, dimensions)
		}
		return nil, fmt.Errorf("stat index file: %w", err)
	}
	switch IndexType(indexType) {
	case IndexTypeFlat, "memory", "":
		idx, err := loadFlat(path, metric, dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case IndexTypeFAISS:
		return loadFAISS(path, metric, dimensions)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: flat, faiss)", indexType)
	}
}

// IsFAISSAvailable returns true if FAISS support is compiled in.
// This is determined by the build tag -tags=faiss.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(MetricInnerProduct, 1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
