package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type AnswerEmbedding struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnswerId     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_answer_model"`
	Vector       pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 uses 768 dimensions
	ModelVersion string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_answer_model"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (AnswerEmbedding) TableName() string {
	return "answer_embeddings"
}
