package mapper

import (
	"encoding/json"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"

	"gorm.io/datatypes"
)

type GenerationJobMapper struct{}

func NewGenerationJobMapper() *GenerationJobMapper {
	return &GenerationJobMapper{}
}

func (m *GenerationJobMapper) ToEntity(j *model.GenerationJob) *entity.GenerationJob {
	if j == nil {
		return nil
	}

	var cfg entity.JobConfig
	if len(j.Config) > 0 {
		// Config was validated at enqueue time; a decode failure here only
		// loses the overrides, defaults still apply.
		_ = json.Unmarshal(j.Config, &cfg)
	}
	cfg.ApplyDefaults()

	return &entity.GenerationJob{
		Id:              j.Id,
		CategoryId:      j.CategoryId,
		Status:          entity.JobStatus(j.Status),
		Config:          cfg,
		CostUSDAccum:    j.CostUSDAccum,
		ErrorKind:       j.ErrorKind,
		ErrorMessage:    j.ErrorMessage,
		CancelRequested: j.CancelRequested,
		MECECoverage:    j.MECECoverage,
		MECEOverlap:     j.MECEOverlap,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

func (m *GenerationJobMapper) ToModel(j *entity.GenerationJob) *model.GenerationJob {
	if j == nil {
		return nil
	}

	cfgJSON, _ := json.Marshal(j.Config)

	return &model.GenerationJob{
		Id:              j.Id,
		CategoryId:      j.CategoryId,
		Status:          string(j.Status),
		Config:          datatypes.JSON(cfgJSON),
		CostUSDAccum:    j.CostUSDAccum,
		ErrorKind:       j.ErrorKind,
		ErrorMessage:    j.ErrorMessage,
		CancelRequested: j.CancelRequested,
		MECECoverage:    j.MECECoverage,
		MECEOverlap:     j.MECEOverlap,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}
