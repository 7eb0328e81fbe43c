package service

import (
	"context"
	"fmt"

	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/pkg/events"
	pktNats "qna-chat-be/pkg/nats"

	"github.com/google/uuid"
)

type IConsumerService interface {
	Start() error
}

// consumerService is the answer worker's inbox: it pulls QUESTION_CREATED
// events off the durable NATS consumer and drives the pipeline for each.
type consumerService struct {
	subscriber *pktNats.Subscriber
	answers    IAnswerService
	logger     logger.ILogger
}

func NewConsumerService(subscriber *pktNats.Subscriber, answers IAnswerService, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		answers:    answers,
		logger:     log,
	}
}

func (s *consumerService) Start() error {
	return s.subscriber.Subscribe("events."+events.TypeQuestionCreated, "answer-worker", s.handleEvent)
}

func (s *consumerService) handleEvent(ctx context.Context, event events.Event) error {
	idStr, ok := event.Payload()["question_id"].(string)
	if !ok {
		s.logger.Error("ConsumerService", "event without question_id", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil // malformed, don't retry
	}
	questionId, err := uuid.Parse(idStr)
	if err != nil {
		s.logger.Error("ConsumerService", "unparsable question_id", map[string]interface{}{
			"question_id": idStr,
		})
		return nil
	}

	if err := s.answers.ProcessQuestion(ctx, questionId); err != nil {
		return fmt.Errorf("process question %s: %w", questionId, err)
	}
	return nil
}
