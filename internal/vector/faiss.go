//go:build faiss && cgo
// +build faiss,cgo

package vector

/*
#cgo CFLAGS: -I/opt/homebrew/include -I/usr/local/include
#cgo LDFLAGS: -L/opt/homebrew/lib -L/usr/local/lib -lfaiss_c

#include <stdlib.h>
#include <faiss/c_api/Index_c.h>
#include <faiss/c_api/IndexFlat_c.h>
#include <faiss/c_api/index_io_c.h>
#include <faiss/c_api/error_c.h>
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"
)

// FAISSIndex wraps a FAISS IndexFlatIP or IndexFlatL2. Positions are FAISS sequential labels.
// The artifact is FAISS's native format, whose fourcc records the metric.
type FAISSIndex struct {
	index      *C.FaissIndex
	metric     Metric
	dimensions int
	mu         sync.RWMutex
}

// NewFAISSIndex creates an empty FAISS flat index for metric.
func NewFAISSIndex(metric Metric, dimensions int) (*FAISSIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	var index *C.FaissIndex
	switch metric {
	case MetricL2:
		var l2 *C.FaissIndexFlatL2
		if ret := C.faiss_IndexFlatL2_new_with(&l2, C.idx_t(dimensions)); ret != 0 {
			return nil, fmt.Errorf("failed to create FAISS index: %s", faissLastError())
		}
		index = (*C.FaissIndex)(l2)
	default:
		var ip *C.FaissIndexFlatIP
		if ret := C.faiss_IndexFlatIP_new_with(&ip, C.idx_t(dimensions)); ret != 0 {
			return nil, fmt.Errorf("failed to create FAISS index: %s", faissLastError())
		}
		index = (*C.FaissIndex)(ip)
	}
	return &FAISSIndex{index: index, metric: metric, dimensions: dimensions}, nil
}

// faissLastError returns the last FAISS error message.
func faissLastError() string {
	cErr := C.faiss_get_last_error()
	if cErr == nil {
		return "unknown error"
	}
	return C.GoString(cErr)
}

func loadFAISS(path string, metric Metric, dimensions int) (VectorIndex, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var index *C.FaissIndex
	if ret := C.faiss_read_index_fname(cPath, 0, &index); ret != 0 {
		return nil, &FormatMismatchError{Path: path, Expected: "faiss " + string(metric), Found: "an unreadable format (" + faissLastError() + ")"}
	}
	found := MetricInnerProduct
	if C.faiss_Index_metric_type(index) == C.METRIC_L2 {
		found = MetricL2
	}
	d := int(C.faiss_Index_d(index))
	if found != metric || d != dimensions {
		C.faiss_Index_free(index)
		return nil, &FormatMismatchError{
			Path:     path,
			Expected: fmt.Sprintf("%s with %d dimensions", metric, dimensions),
			Found:    fmt.Sprintf("%s with %d dimensions", found, d),
		}
	}
	return &FAISSIndex{index: index, metric: metric, dimensions: dimensions}, nil
}

// Add appends vectors at the next labels.
func (f *FAISSIndex) Add(ctx context.Context, vectors ...[]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	n := len(vectors)
	flat := make([]float32, n*f.dimensions)
	for i, vec := range vectors {
		if len(vec) != f.dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vec), f.dimensions)
		}
		copy(flat[i*f.dimensions:(i+1)*f.dimensions], vec)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	ret := C.faiss_Index_add(f.index, C.idx_t(n), (*C.float)(unsafe.Pointer(&flat[0])))
	if ret != 0 {
		return fmt.Errorf("failed to add vectors to FAISS index: %s", faissLastError())
	}
	return nil
}

// Search returns the top-k labels best-first as reported by FAISS.
func (f *FAISSIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	ntotal := int(C.faiss_Index_ntotal(f.index))
	if k <= 0 || ntotal == 0 {
		return nil, nil
	}
	if k > ntotal {
		k = ntotal
	}
	distances := make([]float32, k)
	labels := make([]int64, k)
	ret := C.faiss_Index_search(
		f.index,
		1,
		(*C.float)(unsafe.Pointer(&query[0])),
		C.idx_t(k),
		(*C.float)(unsafe.Pointer(&distances[0])),
		(*C.idx_t)(unsafe.Pointer(&labels[0])),
	)
	if ret != 0 {
		return nil, fmt.Errorf("FAISS search failed: %s", faissLastError())
	}
	results := make([]Result, 0, k)
	for i := 0; i < k; i++ {
		if labels[i] < 0 {
			continue
		}
		results = append(results, Result{Position: int(labels[i]), Score: float64(distances[i])})
	}
	return results, nil
}

// Save writes the native FAISS artifact to a temp file and renames it over path.
func (f *FAISSIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := path + ".tmp"
	cPath := C.CString(tmp)
	defer C.free(unsafe.Pointer(cPath))
	if ret := C.faiss_write_index_fname(f.index, cPath); ret != 0 {
		return fmt.Errorf("failed to save FAISS index: %s", faissLastError())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Size returns the number of vectors in the index.
func (f *FAISSIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int(C.faiss_Index_ntotal(f.index))
}

// Dimensions returns the vector length accepted by the index.
func (f *FAISSIndex) Dimensions() int {
	return f.dimensions
}

// Metric returns the scoring family.
func (f *FAISSIndex) Metric() Metric {
	return f.metric
}

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}

// Close frees the FAISS index resources.
func (f *FAISSIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		C.faiss_Index_free(f.index)
		f.index = nil
	}
	return nil
}
