package entity

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEmbedding caches one vector per (answer, model version). Embeddings
// are created lazily and reused across jobs; only a model change invalidates
// them.
type AnswerEmbedding struct {
	Id           uuid.UUID
	AnswerId     uuid.UUID
	Vector       []float32
	ModelVersion string
	CreatedAt    time.Time
}
