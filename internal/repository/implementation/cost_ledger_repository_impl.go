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

type CostLedgerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CostEntryMapper
}

func NewCostLedgerRepository(db *gorm.DB) contract.CostLedgerRepository {
	return &CostLedgerRepositoryImpl{
		db:     db,
		mapper: mapper.NewCostEntryMapper(),
	}
}

func (r *CostLedgerRepositoryImpl) Create(ctx context.Context, entry *entity.CostEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *CostLedgerRepositoryImpl) SumByJobId(ctx context.Context, jobId uuid.UUID) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&model.CostLedgerEntry{}).
		Where("job_id = ?", jobId).
		Select("COALESCE(SUM(cost_usd), 0)").
		Scan(&sum).Error
	return sum, err
}
