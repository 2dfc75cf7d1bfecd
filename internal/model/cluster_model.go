package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Cluster struct {
	Id              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	JobId           uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberAnswerIds datatypes.JSON  `gorm:"type:jsonb"`
	Centroid        pgvector.Vector `gorm:"type:vector(768)"`
	Noise           bool            `gorm:"default:false"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
}

func (Cluster) TableName() string {
	return "clusters"
}
