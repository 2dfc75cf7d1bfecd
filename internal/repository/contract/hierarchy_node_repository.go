package contract

import (
	"context"

	"codeframe-be/internal/entity"

	"github.com/google/uuid"
)

type HierarchyNodeRepository interface {
	CreateBulk(ctx context.Context, nodes []*entity.HierarchyNode) error
	ListByJobId(ctx context.Context, jobId uuid.UUID) ([]*entity.HierarchyNode, error)
	FindOne(ctx context.Context, id uuid.UUID) (*entity.HierarchyNode, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByParentId removes the codes under a theme (cascade).
	DeleteByParentId(ctx context.Context, parentId uuid.UUID) error
	DeleteByJobId(ctx context.Context, jobId uuid.UUID) error
	// VerifyBrandNodes marks needs_review brand codes of a category as
	// verified. Returns the number of nodes flipped.
	VerifyBrandNodes(ctx context.Context, categoryId uuid.UUID, brandMention string) (int64, error)
}
