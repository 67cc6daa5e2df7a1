package embedding

import (
	"context"
	"math"
	"net/http"
	"time"
)

// EmbeddingProvider turns text into a fixed-length, unit-normalized vector
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// defaultHTTPClient bounds every embedding call; a timeout surfaces as an error to the caller
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// Normalize scales a vector to unit length (magnitude = 1).
// A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

// Dot is the similarity used on unit vectors (equal to cosine similarity).
// Vectors of different length compare over their common prefix.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
