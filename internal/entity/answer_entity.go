package entity

import (
	"time"

	"github.com/google/uuid"
)

// Answer is owned by the survey collaborator; the pipeline only reads it.
type Answer struct {
	Id         uuid.UUID
	Text       string
	CategoryId uuid.UUID
	CreatedAt  time.Time
}
