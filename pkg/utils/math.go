package utils

import "math"

// NormalizeL2 returns a unit-length copy of x. A zero vector is returned as a zero copy.
func NormalizeL2(x []float32) []float32 {
	out := make([]float32, len(x))
	copy(out, x)
	NormalizeL2InPlace(out)
	return out
}

// NormalizeL2InPlace rescales x in place to unit L2 norm.
// If the norm is zero, the slice is unchanged.
func NormalizeL2InPlace(x []float32) {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := 1.0 / math.Sqrt(sum)
	for i := range x {
		x[i] = float32(float64(x[i]) * norm)
	}
}
