package implementation

import (
	"context"
	"errors"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/mapper"
	"codeframe-be/internal/model"
	"codeframe-be/internal/repository/contract"
	"codeframe-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationJobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationJobMapper
}

func NewGenerationJobRepository(db *gorm.DB) contract.GenerationJobRepository {
	return &GenerationJobRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationJobMapper(),
	}
}

func (r *GenerationJobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GenerationJobRepositoryImpl) Create(ctx context.Context, job *entity.GenerationJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationJobRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.GenerationJob, error) {
	var m model.GenerationJob
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GenerationJobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error) {
	var models []*model.GenerationJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GenerationJob, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *GenerationJobRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationJob{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *GenerationJobRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, kind, message string) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(entity.JobStatusFailed),
			"error_kind":    kind,
			"error_message": message,
		}).Error
}

func (r *GenerationJobRepositoryImpl) AddCost(ctx context.Context, id uuid.UUID, deltaUSD float64) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationJob{}).
		Where("id = ?", id).
		Update("cost_usd_accum", gorm.Expr("cost_usd_accum + ?", deltaUSD)).Error
}

func (r *GenerationJobRepositoryImpl) SetMECE(ctx context.Context, id uuid.UUID, coverage, overlap float64) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"mece_coverage": coverage,
			"mece_overlap":  overlap,
		}).Error
}

func (r *GenerationJobRepositoryImpl) RequestCancel(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationJob{}).
		Where("id = ?", id).
		Update("cancel_requested", true).Error
}
