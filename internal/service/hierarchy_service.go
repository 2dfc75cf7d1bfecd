package service

import (
	"context"

	"codeframe-be/internal/dto"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/pkg/brand"

	"github.com/google/uuid"
)

type IHierarchyService interface {
	// GetTree returns the completed codeframe as nested themes and codes.
	GetTree(ctx context.Context, jobId uuid.UUID) (*dto.HierarchyResponse, error)
	Rename(ctx context.Context, req *dto.RenameNodeRequest) error
	// Delete removes a node; deleting a theme cascades to its codes.
	Delete(ctx context.Context, nodeId uuid.UUID) error
	// ConfirmBrand verifies every matching needs-review brand code of the
	// category in one pass.
	ConfirmBrand(ctx context.Context, req *dto.ConfirmBrandRequest) (*dto.ConfirmBrandResponse, error)
}

type hierarchyService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewHierarchyService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IHierarchyService {
	return &hierarchyService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *hierarchyService) GetTree(ctx context.Context, jobId uuid.UUID) (*dto.HierarchyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationJobRepository().FindOne(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "job %s not found", jobId)
	}
	if job.Status != entity.JobStatusCompleted {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"job %s has status %s, hierarchy is available once completed", jobId, job.Status)
	}

	nodes, err := uow.HierarchyNodeRepository().ListByJobId(ctx, jobId)
	if err != nil {
		return nil, err
	}

	return &dto.HierarchyResponse{
		JobId:        jobId,
		MECECoverage: job.MECECoverage,
		MECEOverlap:  job.MECEOverlap,
		Themes:       buildTree(nodes),
		GeneratedAt:  job.UpdatedAt,
	}, nil
}

func buildTree(nodes []*entity.HierarchyNode) []dto.HierarchyNodeResponse {
	var themes []dto.HierarchyNodeResponse
	childrenOf := make(map[uuid.UUID][]dto.HierarchyNodeResponse)

	for _, node := range nodes {
		if node.Kind != entity.NodeKindCode || node.ParentId == nil {
			continue
		}
		childrenOf[*node.ParentId] = append(childrenOf[*node.ParentId], nodeToResponse(node))
	}

	for _, node := range nodes {
		if node.Kind != entity.NodeKindTheme {
			continue
		}
		theme := nodeToResponse(node)
		theme.Children = childrenOf[node.Id]
		themes = append(themes, theme)
	}
	return themes
}

func nodeToResponse(node *entity.HierarchyNode) dto.HierarchyNodeResponse {
	return dto.HierarchyNodeResponse{
		Id:                 node.Id,
		Name:               node.Name,
		Kind:               string(node.Kind),
		Confidence:         node.Confidence,
		IsVerified:         node.IsVerified,
		NeedsReview:        node.NeedsReview,
		SourceClusterId:    node.SourceClusterId,
		SourceBrandMention: node.SourceBrandMention,
	}
}

func (s *hierarchyService) Rename(ctx context.Context, req *dto.RenameNodeRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	node, err := uow.HierarchyNodeRepository().FindOne(ctx, req.Id)
	if err != nil {
		return err
	}
	if node == nil {
		return apperrors.Newf(apperrors.KindNotFound, "node %s not found", req.Id)
	}

	return uow.HierarchyNodeRepository().Rename(ctx, req.Id, req.Name)
}

func (s *hierarchyService) Delete(ctx context.Context, nodeId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	node, err := uow.HierarchyNodeRepository().FindOne(ctx, nodeId)
	if err != nil {
		return err
	}
	if node == nil {
		return apperrors.Newf(apperrors.KindNotFound, "node %s not found", nodeId)
	}

	if node.Kind == entity.NodeKindTheme {
		// Theme and its codes go together or not at all.
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		if err := uow.HierarchyNodeRepository().DeleteByParentId(ctx, nodeId); err != nil {
			_ = uow.Rollback()
			return err
		}
		if err := uow.HierarchyNodeRepository().Delete(ctx, nodeId); err != nil {
			_ = uow.Rollback()
			return err
		}
		return uow.Commit()
	}

	return uow.HierarchyNodeRepository().Delete(ctx, nodeId)
}

func (s *hierarchyService) ConfirmBrand(ctx context.Context, req *dto.ConfirmBrandRequest) (*dto.ConfirmBrandResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Nodes store the normalized mention; callers send the display name.
	mention := brand.Normalize(req.BrandMention)

	count, err := uow.HierarchyNodeRepository().VerifyBrandNodes(ctx, req.CategoryId, mention)
	if err != nil {
		return nil, err
	}

	s.logger.Info("HierarchyService", "Brand confirmed", map[string]interface{}{
		"category_id": req.CategoryId,
		"mention":     mention,
		"verified":    count,
	})

	return &dto.ConfirmBrandResponse{VerifiedCount: count}, nil
}
