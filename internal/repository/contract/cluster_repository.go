package contract

import (
	"context"

	"codeframe-be/internal/entity"

	"github.com/google/uuid"
)

type ClusterRepository interface {
	CreateBulk(ctx context.Context, clusters []*entity.Cluster) error
	ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.Cluster, error)
	// DeleteByJobId clears a job's clusters before a redelivered clustering
	// stage re-runs.
	DeleteByJobId(ctx context.Context, jobId uuid.UUID) error
}
