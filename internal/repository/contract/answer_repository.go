package contract

import (
	"context"

	"codeframe-be/internal/entity"

	"github.com/google/uuid"
)

// AnswerRepository is the Answer Store collaborator interface. The pipeline
// only reads; answers are owned externally.
type AnswerRepository interface {
	// ListEligible returns the answers of a category that can enter
	// generation: not deleted, non-empty text.
	ListEligible(ctx context.Context, categoryId uuid.UUID) ([]*entity.Answer, error)
	CountEligible(ctx context.Context, categoryId uuid.UUID) (int64, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Answer, error)
}
