// Package embeddingtest provides a deterministic embedding provider for tests.
package embeddingtest

import (
	"context"
	"fmt"
	"sync"

	"poultry-diagnose-be/pkg/embedding"
)

// Fake returns fixed vectors per text and counts calls.
type Fake struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   map[string]int
	total   int

	// Fallback is returned for unknown text; when nil, unknown text is an error
	Fallback []float32
	// Err, when set, fails every call
	Err error
}

func NewFake(vectors map[string][]float32) *Fake {
	f := &Fake{vectors: make(map[string][]float32), calls: make(map[string]int)}
	for k, v := range vectors {
		f.vectors[k] = embedding.Normalize(v)
	}
	return f
}

func (f *Fake) Generate(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total++
	f.calls[text]++
	if f.Err != nil {
		return nil, f.Err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	if f.Fallback != nil {
		return embedding.Normalize(f.Fallback), nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *Fake) CallsFor(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[text]
}
