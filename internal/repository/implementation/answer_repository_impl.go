package implementation

import (
	"context"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/mapper"
	"codeframe-be/internal/model"
	"codeframe-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnswerMapper
}

func NewAnswerRepository(db *gorm.DB) contract.AnswerRepository {
	return &AnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnswerMapper(),
	}
}

func (r *AnswerRepositoryImpl) ListEligible(ctx context.Context, categoryId uuid.UUID) ([]*entity.Answer, error) {
	var models []*model.Answer
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryId).
		Where("text <> ''").
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnswerRepositoryImpl) CountEligible(ctx context.Context, categoryId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("category_id = ?", categoryId).
		Where("text <> ''").
		Count(&count).Error
	return count, err
}

func (r *AnswerRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Answer, error) {
	var models []*model.Answer
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
