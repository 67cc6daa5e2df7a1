package implementation

import (
	"context"
	"errors"

	"poultry-diagnose-be/internal/mapper"
	"poultry-diagnose-be/internal/model"
	"poultry-diagnose-be/pkg/graph"

	"gorm.io/gorm"
)

const symptomLookupLimit = 5

// GraphRepositoryImpl serves the disease-symptom graph from Postgres tables,
// for deployments without Neo4j.
type GraphRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GraphMapper
}

func NewGraphRepository(db *gorm.DB) graph.Store {
	return &GraphRepositoryImpl{
		db:     db,
		mapper: mapper.NewGraphMapper(),
	}
}

func (r *GraphRepositoryImpl) DiseasesForSymptom(ctx context.Context, name string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("diseases d").
		Joins("JOIN disease_features df ON df.disease_id = d.id").
		Joins("JOIN features f ON f.id = df.feature_id").
		Where("f.name = ?", name).
		Order("d.name").
		Limit(symptomLookupLimit).
		Pluck("d.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *GraphRepositoryImpl) AllDiseaseProfiles(ctx context.Context) (map[string]graph.DiseaseProfile, error) {
	var diseases []model.Disease
	if err := r.db.WithContext(ctx).Preload("Features").Find(&diseases).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToProfiles(diseases), nil
}

func (r *GraphRepositoryImpl) TreatmentFor(ctx context.Context, diseaseName string) (string, error) {
	return r.diseaseText(ctx, diseaseName, "treatment")
}

func (r *GraphRepositoryImpl) PreventionFor(ctx context.Context, diseaseName string) (string, error) {
	return r.diseaseText(ctx, diseaseName, "prevention")
}

// diseaseText returns "" for an unknown disease, matching the graph behaviour.
func (r *GraphRepositoryImpl) diseaseText(ctx context.Context, diseaseName, column string) (string, error) {
	var m model.Disease
	err := r.db.WithContext(ctx).Select("id", column).Where("name = ?", diseaseName).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if column == "treatment" {
		return m.Treatment, nil
	}
	return m.Prevention, nil
}

func (r *GraphRepositoryImpl) Features(ctx context.Context) ([]graph.Feature, error) {
	var features []model.Feature
	if err := r.db.WithContext(ctx).Order("id").Find(&features).Error; err != nil {
		return nil, err
	}
	out := make([]graph.Feature, len(features))
	for i := range features {
		out[i] = r.mapper.ToFeature(&features[i])
	}
	return out, nil
}

func (r *GraphRepositoryImpl) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
