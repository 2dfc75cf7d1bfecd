package clustering

import "math"

// CosineDistance returns 1 - cosine similarity. Inputs are expected to be
// normalized by the embedding providers, but the magnitude is computed
// anyway so unnormalized vectors still compare correctly.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	return 1 - sim
}

// Centroid averages the member vectors and normalizes the result to unit
// length so it can be compared with cosine distance directly.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	var magnitude float64
	for i := range sum {
		sum[i] /= float64(len(vectors))
		magnitude += sum[i] * sum[i]
	}
	magnitude = math.Sqrt(magnitude)

	out := make([]float32, dim)
	for i := range sum {
		if magnitude > 0 {
			out[i] = float32(sum[i] / magnitude)
		}
	}
	return out
}
