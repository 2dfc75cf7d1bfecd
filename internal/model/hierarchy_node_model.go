package model

import (
	"time"

	"github.com/google/uuid"
)

type HierarchyNode struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobId              uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentId           *uuid.UUID `gorm:"type:uuid;index"`
	Name               string     `gorm:"type:varchar(255);not null"`
	Kind               string     `gorm:"type:varchar(16);not null"`
	Confidence         float64    `gorm:"type:numeric(4,3);default:0"`
	IsVerified         bool       `gorm:"default:false"`
	NeedsReview        bool       `gorm:"default:false"`
	SourceClusterId    *uuid.UUID `gorm:"type:uuid"`
	SourceBrandMention string     `gorm:"type:varchar(255)"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

func (HierarchyNode) TableName() string {
	return "hierarchy_nodes"
}
