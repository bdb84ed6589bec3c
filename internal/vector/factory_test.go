package vector

import (
	"context"
	"testing"
)

func TestNewVectorIndex_Flat(t *testing.T) {
	for _, typ := range []string{"flat", "memory", ""} {
		idx, err := NewVectorIndex(typ, MetricInnerProduct, 3)
		if err != nil {
			t.Fatalf("NewVectorIndex(%q): %v", typ, err)
		}

		ctx := context.Background()
		if err := idx.Add(ctx, []float32{1, 0, 0}); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if idx.Size() != 1 {
			t.Errorf("Size=%d, want 1", idx.Size())
		}
		if idx.Type() != "flat" {
			t.Errorf("Type=%q, want flat", idx.Type())
		}
		idx.Close()
	}
}

func TestNewVectorIndex_Unknown(t *testing.T) {
	if _, err := NewVectorIndex("unknown", MetricInnerProduct, 3); err == nil {
		t.Error("expected error for unknown index type")
	}
	if _, err := LoadIndex("unknown", "", MetricInnerProduct, 3); err == nil {
		t.Error("expected error for unknown index type on load")
	}
}

func TestNewVectorIndex_InvalidDimension(t *testing.T) {
	idx, err := NewVectorIndex("flat", MetricInnerProduct, 0)
	if err == nil {
		t.Error("expected error for zero dimension")
	}
	if idx != nil {
		t.Error("expected nil index on error")
	}
}

func TestIsFAISSAvailable(t *testing.T) {
	// Depends on build tags; only checks it doesn't panic.
	t.Logf("FAISS available: %v", IsFAISSAvailable())
}

func TestNewVectorIndex_FAISS(t *testing.T) {
	if !IsFAISSAvailable() {
		t.Skip("FAISS not available (build with -tags=faiss)")
	}

	idx, err := NewVectorIndex("faiss", MetricInnerProduct, 3)
	if err != nil {
		t.Fatalf("NewVectorIndex(faiss): %v", err)
	}
	defer idx.Close()

	if err := idx.Add(context.Background(), []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size=%d, want 1", idx.Size())
	}
}
