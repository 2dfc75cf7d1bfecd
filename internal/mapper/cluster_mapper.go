package mapper

import (
	"encoding/json"

	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ClusterMapper struct{}

func NewClusterMapper() *ClusterMapper {
	return &ClusterMapper{}
}

func (m *ClusterMapper) ToEntity(c *model.Cluster) *entity.Cluster {
	if c == nil {
		return nil
	}

	var members []uuid.UUID
	if len(c.MemberAnswerIds) > 0 {
		_ = json.Unmarshal(c.MemberAnswerIds, &members)
	}

	return &entity.Cluster{
		Id:              c.Id,
		JobId:           c.JobId,
		MemberAnswerIds: members,
		Centroid:        c.Centroid.Slice(),
		Noise:           c.Noise,
		CreatedAt:       c.CreatedAt,
	}
}

func (m *ClusterMapper) ToModel(c *entity.Cluster) *model.Cluster {
	if c == nil {
		return nil
	}

	membersJSON, _ := json.Marshal(c.MemberAnswerIds)

	return &model.Cluster{
		Id:              c.Id,
		JobId:           c.JobId,
		MemberAnswerIds: datatypes.JSON(membersJSON),
		Centroid:        pgvector.NewVector(c.Centroid),
		Noise:           c.Noise,
		CreatedAt:       c.CreatedAt,
	}
}

func (m *ClusterMapper) ToEntities(clusters []*model.Cluster) []*entity.Cluster {
	entities := make([]*entity.Cluster, len(clusters))
	for i, c := range clusters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ClusterMapper) ToModels(clusters []*entity.Cluster) []*model.Cluster {
	models := make([]*model.Cluster, len(clusters))
	for i, c := range clusters {
		models[i] = m.ToModel(c)
	}
	return models
}
