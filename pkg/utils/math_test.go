package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	in := []float32{3, 4}
	out := NormalizeL2(in)
	if in[0] != 3 || in[1] != 4 {
		t.Errorf("input modified: %v", in)
	}
	if math.Abs(float64(out[0])-0.6) > 1e-6 || math.Abs(float64(out[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", out)
	}
}

func TestNormalizeL2_UnitLength(t *testing.T) {
	vecs := [][]float32{
		{1, 2, 3, 4},
		{-0.5, 0.25, 10, -7},
		{1e-3, 1e-3, 1e-3},
	}
	for _, v := range vecs {
		out := NormalizeL2(v)
		var sum float64
		for _, x := range out {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-6 {
			t.Errorf("norm of %v = %f, want 1", out, math.Sqrt(sum))
		}
	}
}

func TestNormalizeL2_Zero(t *testing.T) {
	out := NormalizeL2([]float32{0, 0, 0})
	for _, x := range out {
		if x != 0 {
			t.Fatalf("zero vector should stay zero, got %v", out)
		}
	}
}
