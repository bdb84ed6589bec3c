package vector

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
)

func benchIndex(b *testing.B, n, dim int) *FlatIndex {
	b.Helper()
	rng := rand.New(rand.NewSource(1))
	idx, _ := NewInnerProductIndex(dim)
	vecs := make([][]float32, n)
	for i := range vecs {
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		vecs[i] = unit(v)
	}
	if err := idx.Add(context.Background(), vecs...); err != nil {
		b.Fatal(err)
	}
	return idx
}

func BenchmarkFlatIndexSearch(b *testing.B) {
	idx := benchIndex(b, 1000, 384)
	query, _ := idx.vectorAt(42)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 10)
	}
}

func BenchmarkFlatIndexSaveLoad(b *testing.B) {
	idx := benchIndex(b, 1000, 384)
	path := filepath.Join(b.TempDir(), "vectors.index")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := idx.Save(path); err != nil {
			b.Fatal(err)
		}
		if _, err := LoadIndex("flat", path, MetricInnerProduct, 384); err != nil {
			b.Fatal(err)
		}
	}
}
