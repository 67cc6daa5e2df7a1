package graph

import "context"

// DiseaseProfile is one disease and the canonical symptoms linked to it in the graph
type DiseaseProfile struct {
	DiseaseID   string   `json:"disease_id"`
	DiseaseName string   `json:"disease_name"`
	Symptoms    []string `json:"symptoms"`
}

// Feature is a vocabulary node of the graph
type Feature struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store is the read contract of the disease-symptom graph.
type Store interface {
	DiseasesForSymptom(ctx context.Context, name string) ([]string, error)
	AllDiseaseProfiles(ctx context.Context) (map[string]DiseaseProfile, error)
	TreatmentFor(ctx context.Context, diseaseName string) (string, error)
	PreventionFor(ctx context.Context, diseaseName string) (string, error)
	Features(ctx context.Context) ([]Feature, error)
	Close(ctx context.Context) error
}

// symptomLookupLimit matches the LIMIT of the symptom lookup query
const symptomLookupLimit = 5
