package symptom

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/embedding"

	"golang.org/x/sync/errgroup"
)

const warmConcurrency = 8

// fileSnapshot is the on-disk vocabulary format: parallel arrays of ids, names and vectors.
type fileSnapshot struct {
	IDs   []string    `json:"ids"`
	Names []string    `json:"names"`
	Vecs  [][]float32 `json:"vecs"`
}

// LoadFile reads a vocabulary snapshot written by the preprocessing job.
func LoadFile(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Inconsistent("symptom.LoadFile", "cannot read snapshot", err)
	}

	var snap fileSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, apperror.Inconsistent("symptom.LoadFile", "cannot decode snapshot", err)
	}
	if len(snap.Names) != len(snap.Vecs) || (len(snap.IDs) != 0 && len(snap.IDs) != len(snap.Names)) {
		return nil, apperror.Inconsistent("symptom.LoadFile",
			fmt.Sprintf("snapshot arrays differ in length: ids=%d names=%d vecs=%d", len(snap.IDs), len(snap.Names), len(snap.Vecs)), nil)
	}

	entries := make([]Entry, len(snap.Names))
	for i, name := range snap.Names {
		id := name
		if len(snap.IDs) > 0 {
			id = snap.IDs[i]
		}
		entries[i] = Entry{ID: id, Name: name, Vector: embedding.Normalize(snap.Vecs[i])}
	}
	return entries, nil
}

// Named is a vocabulary row without a vector yet.
type Named struct {
	ID   string
	Name string
}

// BuildFromNames embeds every name through the provider. The result keeps the input order.
func BuildFromNames(ctx context.Context, provider embedding.EmbeddingProvider, names []Named) ([]Entry, error) {
	entries := make([]Entry, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for i, n := range names {
		i, n := i, n
		g.Go(func() error {
			vec, err := provider.Generate(gctx, n.Name)
			if err != nil {
				return fmt.Errorf("embed %q: %w", n.Name, err)
			}
			entries[i] = Entry{ID: n.ID, Name: n.Name, Vector: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.Inconsistent("symptom.BuildFromNames", "vocabulary warm-up failed", err)
	}
	return entries, nil
}
