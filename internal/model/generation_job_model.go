package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationJob struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CategoryId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          string         `gorm:"type:varchar(32);not null;index"`
	Config          datatypes.JSON `gorm:"type:jsonb"`
	CostUSDAccum    float64        `gorm:"type:numeric(10,6);default:0"`
	ErrorKind       string         `gorm:"type:varchar(64)"`
	ErrorMessage    string         `gorm:"type:text"`
	CancelRequested bool           `gorm:"default:false"`
	MECECoverage    float64        `gorm:"type:numeric(5,4);default:0"`
	MECEOverlap     float64        `gorm:"type:numeric(5,4);default:0"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
