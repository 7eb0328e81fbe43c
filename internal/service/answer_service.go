package service

import (
	"context"

	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"
	"qna-chat-be/pkg/events"
	pktNats "qna-chat-be/pkg/nats"
	"qna-chat-be/pkg/pipeline"

	"github.com/google/uuid"
)

type IAnswerService interface {
	// ProcessQuestion runs the full answer pipeline for one question and
	// persists the result.
	ProcessQuestion(ctx context.Context, questionId uuid.UUID) error
}

type answerService struct {
	runner    *pipeline.Runner
	questions contract.QuestionRepository
	answers   contract.AnswerRepository
	eventBus  *pktNats.Publisher
	logger    logger.ILogger
}

func NewAnswerService(
	runner *pipeline.Runner,
	questions contract.QuestionRepository,
	answers contract.AnswerRepository,
	eventBus *pktNats.Publisher,
	log logger.ILogger,
) IAnswerService {
	return &answerService{
		runner:    runner,
		questions: questions,
		answers:   answers,
		eventBus:  eventBus,
		logger:    log,
	}
}

func (s *answerService) ProcessQuestion(ctx context.Context, questionId uuid.UUID) error {
	question, err := s.questions.FindOne(ctx, specification.ByID{ID: questionId})
	if err != nil {
		return err
	}
	if question == nil {
		// Deleted between publish and delivery. Nothing to answer.
		s.logger.Warn("AnswerService", "question vanished before processing", map[string]interface{}{
			"question_id": questionId.String(),
		})
		return nil
	}

	if existing, err := s.answers.FindByQuestionId(ctx, questionId); err != nil {
		return err
	} else if existing != nil {
		// Redelivery of an already answered question.
		return nil
	}

	answer, err := s.runner.Run(ctx, question)
	if err != nil {
		// A defect escaped the pipeline. Leave the question unanswered so
		// the bus redelivers it; the watchdog times it out eventually.
		s.logger.Error("AnswerService", "pipeline failed", map[string]interface{}{
			"question_id": questionId.String(),
			"error":       err.Error(),
		})
		return err
	}

	created, err := s.answers.Create(ctx, answer, question.ConversationId)
	if err != nil {
		return err
	}
	if !created {
		s.logger.Info("AnswerService", "answer already written by another worker", map[string]interface{}{
			"question_id": questionId.String(),
		})
		return nil
	}

	s.logger.Info("AnswerService", "answer persisted", map[string]interface{}{
		"question_id": questionId.String(),
		"answer_id":   answer.Id.String(),
		"status":      string(answer.Status),
	})

	if err := s.eventBus.Publish(ctx, events.NewAnswerCreated(answer.Id, question.Id, question.ConversationId, string(answer.Status))); err != nil {
		// Delivery notification only; polling still works.
		s.logger.Warn("AnswerService", "failed to publish answer event", map[string]interface{}{
			"answer_id": answer.Id.String(),
			"error":     err.Error(),
		})
	}
	return nil
}
