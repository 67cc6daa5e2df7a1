package contract

import (
	"context"

	"poultry-diagnose-be/pkg/symptom"
)

type SymptomVectorRepository interface {
	// FindAll returns the vocabulary in insertion order
	FindAll(ctx context.Context) ([]symptom.Entry, error)
	ReplaceAll(ctx context.Context, entries []symptom.Entry, embeddingModel string) error
}
