package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"3-4-5", []float32{3, 4}, []float32{0.6, 0.8}},
		{"already unit", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"zero vector unchanged", []float32{0, 0}, []float32{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestDot(t *testing.T) {
	a := Normalize([]float32{1, 1})
	assert.InDelta(t, 1.0, Dot(a, a), 1e-6)
	assert.InDelta(t, 0.0, Dot([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, math.Sqrt2/2, Dot(a, []float32{1, 0}), 1e-6)
}

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m3e-small", req.Model)
		assert.Equal(t, "咳嗽", req.Prompt)

		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	vec, err := NewOllamaProvider(srv.URL, "m3e-small").Generate(context.Background(), "咳嗽")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOllamaProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "咳嗽")
	assert.ErrorContains(t, err, "status 500")
}

func TestOllamaProvider_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))
		_, _ = w.Write([]byte(`{"embedding":{"values":[0,2]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("key-123")
	p.baseURL = srv.URL

	vec, err := p.Generate(context.Background(), "流泪")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vec[1], 1e-6)
}
