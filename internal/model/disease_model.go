package model

import (
	"time"
)

// Disease is the relational form of a (d:Disease) graph node
type Disease struct {
	Id         string    `gorm:"type:varchar(64);primaryKey"`
	Name       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Treatment  string    `gorm:"type:text"`
	Prevention string    `gorm:"type:text"`
	Features   []Feature `gorm:"many2many:disease_features;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Disease) TableName() string {
	return "diseases"
}
