package vector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFlatIndex_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "vectors.index")

	idx, _ := NewInnerProductIndex(3)
	if err := idx.Add(ctx, []float32{1, 0, 0}, []float32{0, 1, 0}, []float32{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadIndex("flat", path, MetricInnerProduct, 3)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if loaded.Size() != 3 {
		t.Fatalf("loaded size=%d, want 3", loaded.Size())
	}
	results, err := loaded.Search(ctx, []float32{0, 0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Position != 2 || results[0].Score != 1 {
		t.Errorf("search after load: got %v", results)
	}
}

func TestLoadIndex_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.index")
	idx, err := LoadIndex("flat", path, MetricL2, 4)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if idx.Size() != 0 {
		t.Errorf("size=%d, want 0", idx.Size())
	}
	if idx.Metric() != MetricL2 || idx.Dimensions() != 4 {
		t.Errorf("fresh index should use configured metric and dimensions, got %s/%d", idx.Metric(), idx.Dimensions())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("loading must not create the artifact")
	}
}

func TestLoadIndex_MetricMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.index")
	l2, _ := NewL2Index(2)
	_ = l2.Add(context.Background(), []float32{1, 0})
	if err := l2.Save(path); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	idx, err := LoadIndex("flat", path, MetricInnerProduct, 2)
	if idx != nil {
		t.Error("no index should be returned on mismatch")
	}
	if !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
	var fm *FormatMismatchError
	if !errors.As(err, &fm) {
		t.Fatalf("expected *FormatMismatchError, got %T", err)
	}
	if fm.Path != path || fm.Found != string(MetricL2) || fm.Expected != string(MetricInnerProduct) {
		t.Errorf("unexpected mismatch detail: %+v", fm)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("artifact must not be modified on mismatch")
	}
}

func TestLoadIndex_DimensionChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.index")
	idx, _ := NewInnerProductIndex(2)
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadIndex("flat", path, MetricInnerProduct, 3); !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch for dimension change, got %v", err)
	}
}

func TestLoadIndex_ForeignFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"faiss flat l2", append([]byte("IxF2"), make([]byte, 32)...)},
		{"garbage", []byte("not an index at all")},
		{"too short", []byte("TX")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vectors.index")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadIndex("flat", path, MetricInnerProduct, 2); !errors.Is(err, ErrFormatMismatch) {
				t.Errorf("expected ErrFormatMismatch, got %v", err)
			}
		})
	}
}

func TestLoadIndex_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.index")
	idx, _ := NewInnerProductIndex(2)
	_ = idx.Add(context.Background(), []float32{1, 0}, []float32{0, 1})
	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadIndex("flat", path, MetricInnerProduct, 2)
	if err == nil {
		t.Fatal("expected error for truncated artifact")
	}
	if errors.Is(err, ErrFormatMismatch) {
		t.Error("truncation is corruption, not a format mismatch")
	}
}

func TestFlatIndex_SaveEmptyPath(t *testing.T) {
	idx, _ := NewInnerProductIndex(2)
	if err := idx.Save(""); err != nil {
		t.Errorf("Save empty path should be no-op: %v", err)
	}
}

func TestFormatMismatchError_Message(t *testing.T) {
	err := &FormatMismatchError{Path: "/data/vectors.index", Expected: "inner_product", Found: "l2"}
	msg := err.Error()
	for _, want := range []string{"/data/vectors.index", "inner_product", "l2", "rebuild"} {
		if !contains(msg, want) {
			t.Errorf("message %q should mention %q", msg, want)
		}
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
