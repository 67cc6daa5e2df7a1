package model

import "time"

// Feature is a symptom node; the disease_features join table carries the DIAGNOSE edges
type Feature struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Feature) TableName() string {
	return "features"
}
