package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is the read-side projection of the externally owned answers table.
// The pipeline never writes to it.
type Answer struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Text       string         `gorm:"type:text"`
	CategoryId uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Answer) TableName() string {
	return "answers"
}
