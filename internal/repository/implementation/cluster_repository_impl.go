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

type ClusterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClusterMapper
}

func NewClusterRepository(db *gorm.DB) contract.ClusterRepository {
	return &ClusterRepositoryImpl{
		db:     db,
		mapper: mapper.NewClusterMapper(),
	}
}

func (r *ClusterRepositoryImpl) CreateBulk(ctx context.Context, clusters []*entity.Cluster) error {
	if len(clusters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(r.mapper.ToModels(clusters)).Error
}

func (r *ClusterRepositoryImpl) ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.Cluster, error) {
	var models []*model.Cluster
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobId).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ClusterRepositoryImpl) DeleteByJobId(ctx context.Context, jobId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("job_id = ?", jobId).
		Delete(&model.Cluster{}).Error
}
