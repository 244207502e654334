package metrics

import "math"

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors. Mismatched lengths or a zero-norm vector yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 clamps a similarity into [0, 1]. Embedding models can yield raw
// cosines slightly outside the range through floating-point drift or negative
// correlation; the clamp is a defined scoring policy, so callers always see a
// value comparable across backends.
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
