package entity

import (
	"time"

	"github.com/google/uuid"
)

// CostEntry is one row in the cost ledger: a single billed LLM call with its
// actual reported usage. Querying the ledger belongs to a collaborator.
type CostEntry struct {
	Id        uuid.UUID
	JobId     uuid.UUID
	Model     string
	TokensIn  int
	TokensOut int
	CostUSD   float64
	CreatedAt time.Time
}
