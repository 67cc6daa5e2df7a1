package symptom

import (
	"context"
	"fmt"
	"strings"

	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/embedding"
)

// DefaultThreshold is the minimum similarity for a raw mention to be accepted.
const DefaultThreshold = 0.7

// Entry is one row of the canonical symptom vocabulary
type Entry struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Vector []float32 `json:"vector"`
}

// Match is an accepted resolution of a raw mention
type Match struct {
	Raw   string  `json:"raw"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Index holds the vocabulary with precomputed unit vectors. It is immutable after construction.
type Index struct {
	entries   []Entry
	byName    map[string]int
	embedder  embedding.EmbeddingProvider
	threshold float64
	dim       int
}

// NormalizeName is the identity function for canonical names: lower case, single spaces.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NewIndex validates entries and builds the index. Insertion order is preserved and decides ties;
// a repeated name keeps its first occurrence.
func NewIndex(entries []Entry, embedder embedding.EmbeddingProvider, threshold float64) (*Index, error) {
	if len(entries) == 0 {
		return nil, apperror.Inconsistent("symptom.NewIndex", "symptom vocabulary is empty", nil)
	}
	if embedder == nil {
		return nil, apperror.Inconsistent("symptom.NewIndex", "no embedding provider", nil)
	}

	dim := len(entries[0].Vector)
	idx := &Index{
		entries:   make([]Entry, 0, len(entries)),
		byName:    make(map[string]int, len(entries)),
		embedder:  embedder,
		threshold: threshold,
		dim:       dim,
	}
	for i, e := range entries {
		name := NormalizeName(e.Name)
		if name == "" {
			return nil, apperror.Inconsistent("symptom.NewIndex", fmt.Sprintf("entry %d has an empty name", i), nil)
		}
		if dim == 0 || len(e.Vector) != dim {
			return nil, apperror.Inconsistent("symptom.NewIndex",
				fmt.Sprintf("entry %q has dimension %d, expected %d", e.Name, len(e.Vector), dim), nil)
		}
		if _, dup := idx.byName[name]; dup {
			continue
		}
		idx.byName[name] = len(idx.entries)
		idx.entries = append(idx.entries, Entry{ID: e.ID, Name: name, Vector: embedding.Normalize(e.Vector)})
	}
	return idx, nil
}

// Resolve maps a raw mention onto the closest canonical name.
// ok is false when the best score is below the threshold or the input is blank;
// blank input never reaches the embedding service.
func (i *Index) Resolve(ctx context.Context, raw string) (Match, bool, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Match{}, false, nil
	}

	vec, err := i.embedder.Generate(ctx, text)
	if err != nil {
		return Match{}, false, apperror.Unavailable("embedding.Generate", err)
	}
	if len(vec) != i.dim {
		return Match{}, false, apperror.Unavailable("embedding.Generate",
			fmt.Errorf("dimension %d, index expects %d", len(vec), i.dim))
	}

	best := -1
	bestScore := 0.0
	for n, e := range i.entries {
		score := embedding.Dot(e.Vector, vec)
		// strict comparison keeps the earliest entry on ties
		if best == -1 || score > bestScore {
			best = n
			bestScore = score
		}
	}

	if bestScore < i.threshold {
		return Match{Raw: raw, Score: bestScore}, false, nil
	}
	return Match{Raw: raw, Name: i.entries[best].Name, Score: bestScore}, true, nil
}

// Contains reports whether name (after normalisation) is part of the vocabulary.
func (i *Index) Contains(name string) bool {
	_, ok := i.byName[NormalizeName(name)]
	return ok
}

func (i *Index) Len() int {
	return len(i.entries)
}

func (i *Index) Threshold() float64 {
	return i.threshold
}
