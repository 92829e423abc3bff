package utils

import "math"

// NormalizeL2 scales vec in place to unit length. A zero vector is left as is.
func NormalizeL2(vec []float32) {
	var squares float64
	for _, v := range vec {
		squares += float64(v) * float64(v)
	}
	if squares == 0 {
		return
	}
	scale := 1 / math.Sqrt(squares)
	for i, v := range vec {
		vec[i] = float32(float64(v) * scale)
	}
}
