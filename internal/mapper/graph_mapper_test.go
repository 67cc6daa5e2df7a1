package mapper

import (
	"testing"

	"poultry-diagnose-be/internal/model"
	"poultry-diagnose-be/pkg/symptom"

	"github.com/stretchr/testify/assert"
)

func TestGraphMapper_ToProfiles(t *testing.T) {
	m := NewGraphMapper()
	profiles := m.ToProfiles([]model.Disease{
		{Id: "d1", Name: "传染性鼻炎", Features: []model.Feature{{Id: "f2", Name: "流鼻涕"}, {Id: "f1", Name: "咳嗽"}}},
		{Id: "d2", Name: "orphan"},
	})

	assert.Len(t, profiles, 1)
	assert.Equal(t, []string{"咳嗽", "流鼻涕"}, profiles["d1"].Symptoms)
	assert.Equal(t, "传染性鼻炎", profiles["d1"].DiseaseName)
}

func TestGraphMapper_VectorRoundTrip(t *testing.T) {
	m := NewGraphMapper()
	entry := symptom.Entry{ID: "feature_1", Name: "咳嗽", Vector: []float32{0.6, 0.8}}

	row := m.ToVectorModel(entry, 3, "m3e-small")
	assert.Equal(t, 3, row.Position)
	assert.Equal(t, entry, m.ToEntry(row))
}
