package mapper

import (
	"codeframe-be/internal/entity"
	"codeframe-be/internal/model"
)

type AnswerMapper struct{}

func NewAnswerMapper() *AnswerMapper {
	return &AnswerMapper{}
}

func (m *AnswerMapper) ToEntity(a *model.Answer) *entity.Answer {
	if a == nil {
		return nil
	}
	return &entity.Answer{
		Id:         a.Id,
		Text:       a.Text,
		CategoryId: a.CategoryId,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *AnswerMapper) ToEntities(answers []*model.Answer) []*entity.Answer {
	entities := make([]*entity.Answer, len(answers))
	for i, a := range answers {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
