package service

import (
	"context"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/pkg/rephrase"
)

// HistoryService feeds the rephrasing step the conversation turns preceding
// a question, most recent first.
type HistoryService struct {
	questions contract.QuestionRepository
}

var _ rephrase.HistoryProvider = &HistoryService{}

func NewHistoryService(questions contract.QuestionRepository) *HistoryService {
	return &HistoryService{questions: questions}
}

func (s *HistoryService) RecentHistory(ctx context.Context, question *entity.Question, limit int) ([]rephrase.HistoryEntry, error) {
	turns, err := s.questions.FindAnsweredTurns(ctx, question.ConversationId, question.CreatedAt, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]rephrase.HistoryEntry, 0, len(turns))
	for _, t := range turns {
		entries = append(entries, rephrase.HistoryEntry{
			Question: t.Question.Message,
			Answer:   t.Answer.Message,
			Status:   t.Answer.Status,
		})
	}
	return entries, nil
}
