package mapper

import (
	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type AnswerEmbeddingMapper struct{}

func NewAnswerEmbeddingMapper() *AnswerEmbeddingMapper {
	return &AnswerEmbeddingMapper{}
}

func (m *AnswerEmbeddingMapper) ToEntity(e *model.AnswerEmbedding) *entity.AnswerEmbedding {
	if e == nil {
		return nil
	}
	return &entity.AnswerEmbedding{
		Id:           e.Id,
		AnswerId:     e.AnswerId,
		Vector:       e.Vector.Slice(),
		ModelVersion: e.ModelVersion,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *AnswerEmbeddingMapper) ToModel(e *entity.AnswerEmbedding) *model.AnswerEmbedding {
	if e == nil {
		return nil
	}
	return &model.AnswerEmbedding{
		Id:           e.Id,
		AnswerId:     e.AnswerId,
		Vector:       pgvector.NewVector(e.Vector),
		ModelVersion: e.ModelVersion,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *AnswerEmbeddingMapper) ToEntities(embeddings []*model.AnswerEmbedding) []*entity.AnswerEmbedding {
	entities := make([]*entity.AnswerEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *AnswerEmbeddingMapper) ToModels(embeddings []*entity.AnswerEmbedding) []*model.AnswerEmbedding {
	models := make([]*model.AnswerEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
