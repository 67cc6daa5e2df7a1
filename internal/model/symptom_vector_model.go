package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// SymptomVector stores the precomputed embedding of one canonical symptom.
// Position keeps the vocabulary insertion order, which decides similarity ties.
type SymptomVector struct {
	Id        string          `gorm:"type:varchar(64);primaryKey"`
	Name      string          `gorm:"type:varchar(255);uniqueIndex;not null"`
	Position  int             `gorm:"not null;index"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	Model     string          `gorm:"type:varchar(100)"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (SymptomVector) TableName() string {
	return "symptom_vectors"
}
