package unitofwork

import (
	"context"

	"codeframe-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnswerRepository() contract.AnswerRepository
	AnswerEmbeddingRepository() contract.AnswerEmbeddingRepository
	GenerationJobRepository() contract.GenerationJobRepository
	ClusterRepository() contract.ClusterRepository
	HierarchyNodeRepository() contract.HierarchyNodeRepository
	CostLedgerRepository() contract.CostLedgerRepository
}
