package service

import (
	"context"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/events"
	pktNats "qna-chat-be/pkg/nats"
)

type IWatchdogService interface {
	Run(ctx context.Context)
}

// watchdogService sweeps for questions whose worker never finished (crashed
// mid-pipeline, dropped event) and closes them with a timeout answer so the
// client is not left polling forever.
type watchdogService struct {
	questions contract.QuestionRepository
	answers   contract.AnswerRepository
	registry  *canned.Registry
	eventBus  *pktNats.Publisher
	interval  time.Duration
	timeout   time.Duration
	logger    logger.ILogger
}

func NewWatchdogService(
	questions contract.QuestionRepository,
	answers contract.AnswerRepository,
	registry *canned.Registry,
	eventBus *pktNats.Publisher,
	interval time.Duration,
	timeout time.Duration,
	log logger.ILogger,
) IWatchdogService {
	return &watchdogService{
		questions: questions,
		answers:   answers,
		registry:  registry,
		eventBus:  eventBus,
		interval:  interval,
		timeout:   timeout,
		logger:    log,
	}
}

func (s *watchdogService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *watchdogService) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.timeout)
	stale, err := s.questions.FindUnansweredBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Error("WatchdogService", "sweep query failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, question := range stale {
		answer := entity.NewPendingAnswer(question.Id)
		answer.Status = entity.AnswerStatusErrorTimeout
		answer.Message = s.registry.Fixed(canned.KeyTimeout)

		created, err := s.answers.Create(ctx, answer, question.ConversationId)
		if err != nil {
			s.logger.Error("WatchdogService", "failed to write timeout answer", map[string]interface{}{
				"question_id": question.Id.String(),
				"error":       err.Error(),
			})
			continue
		}
		if !created {
			// The worker finished after all. Fine.
			continue
		}

		s.logger.Warn("WatchdogService", "question timed out", map[string]interface{}{
			"question_id": question.Id.String(),
			"age":         time.Since(question.CreatedAt).String(),
		})

		if err := s.eventBus.Publish(ctx, events.NewAnswerCreated(answer.Id, question.Id, question.ConversationId, string(answer.Status))); err != nil {
			s.logger.Warn("WatchdogService", "failed to publish timeout answer event", map[string]interface{}{
				"answer_id": answer.Id.String(),
				"error":     err.Error(),
			})
		}
	}
}
