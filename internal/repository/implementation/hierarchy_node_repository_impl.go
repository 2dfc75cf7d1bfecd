package implementation

import (
	"context"
	"errors"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/mapper"
	"codeframe-be/internal/model"
	"codeframe-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HierarchyNodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HierarchyNodeMapper
}

func NewHierarchyNodeRepository(db *gorm.DB) contract.HierarchyNodeRepository {
	return &HierarchyNodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewHierarchyNodeMapper(),
	}
}

func (r *HierarchyNodeRepositoryImpl) CreateBulk(ctx context.Context, nodes []*entity.HierarchyNode) error {
	if len(nodes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(r.mapper.ToModels(nodes)).Error
}

func (r *HierarchyNodeRepositoryImpl) ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.HierarchyNode, error) {
	var models []*model.HierarchyNode
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobId).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *HierarchyNodeRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.HierarchyNode, error) {
	var m model.HierarchyNode
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *HierarchyNodeRepositoryImpl) Rename(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.HierarchyNode{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *HierarchyNodeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.HierarchyNode{}, "id = ?", id).Error
}

func (r *HierarchyNodeRepositoryImpl) DeleteByParentId(ctx context.Context, parentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("parent_id = ?", parentId).
		Delete(&model.HierarchyNode{}).Error
}

func (r *HierarchyNodeRepositoryImpl) DeleteByJobId(ctx context.Context, jobId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("job_id = ?", jobId).
		Delete(&model.HierarchyNode{}).Error
}

func (r *HierarchyNodeRepositoryImpl) VerifyBrandNodes(ctx context.Context, categoryId uuid.UUID, brandMention string) (int64, error) {
	subQuery := r.db.Table("generation_jobs").Select("id").Where("category_id = ?", categoryId)
	res := r.db.WithContext(ctx).
		Model(&model.HierarchyNode{}).
		Where("job_id IN (?)", subQuery).
		Where("source_brand_mention = ?", brandMention).
		Where("needs_review = ?", true).
		Updates(map[string]interface{}{
			"is_verified":  true,
			"needs_review": false,
		})
	return res.RowsAffected, res.Error
}
