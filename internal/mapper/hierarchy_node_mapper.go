package mapper

import (
	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"
)

type HierarchyNodeMapper struct{}

func NewHierarchyNodeMapper() *HierarchyNodeMapper {
	return &HierarchyNodeMapper{}
}

func (m *HierarchyNodeMapper) ToEntity(n *model.HierarchyNode) *entity.HierarchyNode {
	if n == nil {
		return nil
	}
	return &entity.HierarchyNode{
		Id:                 n.Id,
		JobId:              n.JobId,
		ParentId:           n.ParentId,
		Name:               n.Name,
		Kind:               entity.NodeKind(n.Kind),
		Confidence:         n.Confidence,
		IsVerified:         n.IsVerified,
		NeedsReview:        n.NeedsReview,
		SourceClusterId:    n.SourceClusterId,
		SourceBrandMention: n.SourceBrandMention,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          n.UpdatedAt,
	}
}

func (m *HierarchyNodeMapper) ToModel(n *entity.HierarchyNode) *model.HierarchyNode {
	if n == nil {
		return nil
	}
	return &model.HierarchyNode{
		Id:                 n.Id,
		JobId:              n.JobId,
		ParentId:           n.ParentId,
		Name:               n.Name,
		Kind:               string(n.Kind),
		Confidence:         n.Confidence,
		IsVerified:         n.IsVerified,
		NeedsReview:        n.NeedsReview,
		SourceClusterId:    n.SourceClusterId,
		SourceBrandMention: n.SourceBrandMention,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          n.UpdatedAt,
	}
}

func (m *HierarchyNodeMapper) ToEntities(nodes []*model.HierarchyNode) []*entity.HierarchyNode {
	entities := make([]*entity.HierarchyNode, len(nodes))
	for i, n := range nodes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *HierarchyNodeMapper) ToModels(nodes []*entity.HierarchyNode) []*model.HierarchyNode {
	models := make([]*model.HierarchyNode, len(nodes))
	for i, n := range nodes {
		models[i] = m.ToModel(n)
	}
	return models
}
