package mapper

import (
	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"
)

type CostEntryMapper struct{}

func NewCostEntryMapper() *CostEntryMapper {
	return &CostEntryMapper{}
}

func (m *CostEntryMapper) ToEntity(e *model.CostLedgerEntry) *entity.CostEntry {
	if e == nil {
		return nil
	}
	return &entity.CostEntry{
		Id:        e.Id,
		JobId:     e.JobId,
		Model:     e.Model,
		TokensIn:  e.TokensIn,
		TokensOut: e.TokensOut,
		CostUSD:   e.CostUSD,
		CreatedAt: e.CreatedAt,
	}
}

func (m *CostEntryMapper) ToModel(e *entity.CostEntry) *model.CostLedgerEntry {
	if e == nil {
		return nil
	}
	return &model.CostLedgerEntry{
		Id:        e.Id,
		JobId:     e.JobId,
		Model:     e.Model,
		TokensIn:  e.TokensIn,
		TokensOut: e.TokensOut,
		CostUSD:   e.CostUSD,
		CreatedAt: e.CreatedAt,
	}
}
