package implementation

import (
	"context"

	"poultry-diagnose-be/internal/mapper"
	"poultry-diagnose-be/internal/model"
	"poultry-diagnose-be/internal/repository/contract"
	"poultry-diagnose-be/pkg/symptom"

	"gorm.io/gorm"
)

type SymptomVectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GraphMapper
}

func NewSymptomVectorRepository(db *gorm.DB) contract.SymptomVectorRepository {
	return &SymptomVectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewGraphMapper(),
	}
}

func (r *SymptomVectorRepositoryImpl) FindAll(ctx context.Context) ([]symptom.Entry, error) {
	var rows []model.SymptomVector
	if err := r.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]symptom.Entry, len(rows))
	for i := range rows {
		entries[i] = r.mapper.ToEntry(&rows[i])
	}
	return entries, nil
}

// ReplaceAll swaps the whole vocabulary in one transaction.
func (r *SymptomVectorRepositoryImpl) ReplaceAll(ctx context.Context, entries []symptom.Entry, embeddingModel string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SymptomVector{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]*model.SymptomVector, len(entries))
		for i, e := range entries {
			rows[i] = r.mapper.ToVectorModel(e, i, embeddingModel)
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
