package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cluster is one density-based group of answer embeddings produced for a
// job. Noise holds the answers no cluster claimed.
type Cluster struct {
	Id              uuid.UUID
	JobId           uuid.UUID
	MemberAnswerIds []uuid.UUID
	Centroid        []float32
	Noise           bool
	CreatedAt       time.Time
}
