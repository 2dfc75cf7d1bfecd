package contract

import (
	"context"

	"codeframe-be/internal/entity"

	"github.com/google/uuid"
)

type AnswerEmbeddingRepository interface {
	// ListByAnswerIds returns cached embeddings for the given answers under
	// one model version.
	ListByAnswerIds(ctx context.Context, answerIds []uuid.UUID, modelVersion string) ([]*entity.AnswerEmbedding, error)
	// UpsertBulk writes embeddings idempotently: on a (answer_id,
	// model_version) conflict the newest vector wins.
	UpsertBulk(ctx context.Context, embeddings []*entity.AnswerEmbedding) error
	// DeleteStale drops embeddings of retired model versions.
	DeleteStale(ctx context.Context, currentModelVersion string) error
	Count(ctx context.Context, modelVersion string) (int64, error)
}
