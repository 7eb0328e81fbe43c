package service

import (
	"context"

	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"
	"qna-chat-be/internal/websocket"
	"qna-chat-be/pkg/events"
	pktNats "qna-chat-be/pkg/nats"

	"github.com/google/uuid"
)

type INotifierService interface {
	Start() error
}

// notifierService bridges finished answers to waiting browsers: it listens
// for ANSWER_CREATED on the bus, resolves the owning client and pushes a
// notice through the websocket hub.
type notifierService struct {
	subscriber    *pktNats.Subscriber
	conversations contract.ConversationRepository
	hub           *websocket.Hub
	logger        logger.ILogger
}

func NewNotifierService(
	subscriber *pktNats.Subscriber,
	conversations contract.ConversationRepository,
	hub *websocket.Hub,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		subscriber:    subscriber,
		conversations: conversations,
		hub:           hub,
		logger:        log,
	}
}

func (s *notifierService) Start() error {
	return s.subscriber.Subscribe("events."+events.TypeAnswerCreated, "ws-notifier", s.handleEvent)
}

func (s *notifierService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	conversationIdStr, _ := payload["conversation_id"].(string)
	conversationId, err := uuid.Parse(conversationIdStr)
	if err != nil {
		s.logger.Error("NotifierService", "event without valid conversation_id", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil // malformed, don't retry
	}

	conversation, err := s.conversations.FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil
	}

	answerId, _ := payload["answer_id"].(string)
	questionId, _ := payload["question_id"].(string)
	status, _ := payload["status"].(string)

	s.hub.Send(conversation.ClientId, websocket.AnswerNotice{
		AnswerId:       answerId,
		QuestionId:     questionId,
		ConversationId: conversationIdStr,
		Status:         status,
	})
	return nil
}
