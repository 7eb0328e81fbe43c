package mapper

import (
	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/model"
)

type QuestionMapper struct{}

func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

func (m *QuestionMapper) ToEntity(q *model.Question) *entity.Question {
	if q == nil {
		return nil
	}
	return &entity.Question{
		Id:             q.Id,
		ConversationId: q.ConversationId,
		Message:        q.Message,
		CreatedAt:      q.CreatedAt,
	}
}

func (m *QuestionMapper) ToModel(q *entity.Question) *model.Question {
	if q == nil {
		return nil
	}
	return &model.Question{
		Id:             q.Id,
		ConversationId: q.ConversationId,
		Message:        q.Message,
		CreatedAt:      q.CreatedAt,
	}
}
