package contract

import (
	"context"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GenerationJobRepository interface {
	Create(ctx context.Context, job *entity.GenerationJob) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.GenerationJob, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error)
	// UpdateStatus persists a forward stage transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error
	// MarkFailed flips the job to failed with its structured reason.
	MarkFailed(ctx context.Context, id uuid.UUID, kind, message string) error
	// AddCost atomically increments cost_usd_accum by the actual reported
	// usage of one call.
	AddCost(ctx context.Context, id uuid.UUID, deltaUSD float64) error
	SetMECE(ctx context.Context, id uuid.UUID, coverage, overlap float64) error
	RequestCancel(ctx context.Context, id uuid.UUID) error
}
