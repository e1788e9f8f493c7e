package embedding

import (
	"fmt"
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors, in
// [-1, 1]. Vectors of different length, or a zero vector, are an error: the
// score would be meaningless.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("cosine similarity of a zero vector")
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Floating point can push identical vectors a hair past 1.
	return math.Max(-1, math.Min(1, sim)), nil
}

// CosineDistance computes the cosine distance between two vectors
func CosineDistance(a, b []float32) (float64, error) {
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// SimilarityPercent returns (1 - cosine distance) * 100 rounded to two
// decimals. Negative similarity is kept, so the result is in [-100, 100].
func SimilarityPercent(a, b []float32) (float64, error) {
	dist, err := CosineDistance(a, b)
	if err != nil {
		return 0, err
	}
	return Round2((1 - dist) * 100), nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
