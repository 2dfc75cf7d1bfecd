package implementation

import (
	"context"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/mapper"
	"codeframe-be/internal/model"
	"codeframe-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnswerEmbeddingMapper
}

func NewAnswerEmbeddingRepository(db *gorm.DB) contract.AnswerEmbeddingRepository {
	return &AnswerEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnswerEmbeddingMapper(),
	}
}

func (r *AnswerEmbeddingRepositoryImpl) ListByAnswerIds(ctx context.Context, answerIds []uuid.UUID, modelVersion string) ([]*entity.AnswerEmbedding, error) {
	var models []*model.AnswerEmbedding
	err := r.db.WithContext(ctx).
		Where("answer_id IN ?", answerIds).
		Where("model_version = ?", modelVersion).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnswerEmbeddingRepositoryImpl) UpsertBulk(ctx context.Context, embeddings []*entity.AnswerEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	// Last write wins on (answer_id, model_version); vectors are
	// deterministic per model so concurrent writers converge.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "answer_id"}, {Name: "model_version"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector"}),
		}).
		Create(models).Error
}

func (r *AnswerEmbeddingRepositoryImpl) DeleteStale(ctx context.Context, currentModelVersion string) error {
	return r.db.WithContext(ctx).
		Where("model_version <> ?", currentModelVersion).
		Delete(&model.AnswerEmbedding{}).Error
}

func (r *AnswerEmbeddingRepositoryImpl) Count(ctx context.Context, modelVersion string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AnswerEmbedding{}).
		Where("model_version = ?", modelVersion).
		Count(&count).Error
	return count, err
}
