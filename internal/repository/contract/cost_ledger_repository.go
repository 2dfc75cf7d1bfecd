package contract

import (
	"context"

	"codeframe-be/internal/entity"

	"github.com/google/uuid"
)

// CostLedgerRepository is the Cost Ledger sink. Querying it belongs to a
// collaborator; the pipeline only appends.
type CostLedgerRepository interface {
	Create(ctx context.Context, entry *entity.CostEntry) error
	SumByJobId(ctx context.Context, jobId uuid.UUID) (float64, error)
}
