package mapper

import (
	"sort"

	"poultry-diagnose-be/internal/model"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/symptom"

	"github.com/pgvector/pgvector-go"
)

type GraphMapper struct{}

func NewGraphMapper() *GraphMapper {
	return &GraphMapper{}
}

// ToProfile lists the feature names sorted for a stable snapshot.
func (m *GraphMapper) ToProfile(d *model.Disease) graph.DiseaseProfile {
	symptoms := make([]string, 0, len(d.Features))
	for _, f := range d.Features {
		symptoms = append(symptoms, f.Name)
	}
	sort.Strings(symptoms)
	return graph.DiseaseProfile{DiseaseID: d.Id, DiseaseName: d.Name, Symptoms: symptoms}
}

// ToProfiles skips diseases without features, like the DIAGNOSE match in the graph query.
func (m *GraphMapper) ToProfiles(diseases []model.Disease) map[string]graph.DiseaseProfile {
	out := make(map[string]graph.DiseaseProfile, len(diseases))
	for i := range diseases {
		if len(diseases[i].Features) == 0 {
			continue
		}
		out[diseases[i].Id] = m.ToProfile(&diseases[i])
	}
	return out
}

func (m *GraphMapper) ToFeature(f *model.Feature) graph.Feature {
	return graph.Feature{ID: f.Id, Name: f.Name}
}

func (m *GraphMapper) ToEntry(v *model.SymptomVector) symptom.Entry {
	return symptom.Entry{ID: v.Id, Name: v.Name, Vector: v.Embedding.Slice()}
}

func (m *GraphMapper) ToVectorModel(e symptom.Entry, position int, embeddingModel string) *model.SymptomVector {
	return &model.SymptomVector{
		Id:        e.ID,
		Name:      e.Name,
		Position:  position,
		Embedding: pgvector.NewVector(e.Vector),
		Model:     embeddingModel,
	}
}
