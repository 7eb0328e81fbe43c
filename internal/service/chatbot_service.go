package service

import (
	"context"
	"strings"

	"qna-chat-be/internal/dto"
	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/pkg/serverutils"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"
	"qna-chat-be/pkg/events"
	pktNats "qna-chat-be/pkg/nats"

	"github.com/google/uuid"
)

type IChatbotService interface {
	Ask(ctx context.Context, clientId string, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	PollAnswer(ctx context.Context, clientId string, questionId uuid.UUID) (*dto.PollAnswerResponse, error)
	GetConversations(ctx context.Context, clientId string) ([]dto.ConversationResponse, error)
	GetHistory(ctx context.Context, clientId string, conversationId uuid.UUID) ([]dto.HistoryTurnResponse, error)
}

type chatbotService struct {
	conversations contract.ConversationRepository
	questions     contract.QuestionRepository
	answers       contract.AnswerRepository
	usage         IUsageService
	eventBus      *pktNats.Publisher
	logger        logger.ILogger
}

func NewChatbotService(
	conversations contract.ConversationRepository,
	questions contract.QuestionRepository,
	answers contract.AnswerRepository,
	usage IUsageService,
	eventBus *pktNats.Publisher,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		conversations: conversations,
		questions:     questions,
		answers:       answers,
		usage:         usage,
		eventBus:      eventBus,
		logger:        log,
	}
}

// Ask persists the question and hands it to the answer worker through the
// event bus. The caller polls (or listens on the websocket) for the answer.
func (s *chatbotService) Ask(ctx context.Context, clientId string, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	if err := s.usage.CheckAndConsume(ctx, clientId); err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(ctx, clientId, req)
	if err != nil {
		return nil, err
	}

	question := &entity.Question{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Message:        strings.TrimSpace(req.Message),
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.NewQuestionCreated(question.Id, conversation.Id)); err != nil {
		// The question is saved; the watchdog will pick it up if the bus
		// dropped it. Surface the degradation in the logs only.
		s.logger.Error("ChatbotService", "failed to publish question event", map[string]interface{}{
			"question_id": question.Id.String(),
			"error":       err.Error(),
		})
	}

	return &dto.AskQuestionResponse{
		ConversationId: conversation.Id,
		QuestionId:     question.Id,
		Status:         string(entity.AnswerStatusPending),
		CreatedAt:      question.CreatedAt,
	}, nil
}

func (s *chatbotService) resolveConversation(ctx context.Context, clientId string, req *dto.AskQuestionRequest) (*entity.Conversation, error) {
	if req.ConversationId != nil {
		conversation, err := s.conversations.FindOne(ctx,
			specification.ByID{ID: *req.ConversationId},
			specification.ByClientID{ClientID: clientId},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, &serverutils.NotFoundError{Resource: "conversation"}
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		Id:       uuid.New(),
		ClientId: clientId,
		Title:    conversationTitle(req.Message),
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// conversationTitle derives a new conversation's title from its first
// question. Truncation counts runes so a multi-byte character is never
// split into invalid UTF-8.
func conversationTitle(message string) string {
	title := strings.TrimSpace(message)
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	return title
}

func (s *chatbotService) PollAnswer(ctx context.Context, clientId string, questionId uuid.UUID) (*dto.PollAnswerResponse, error) {
	question, err := s.questions.FindOne(ctx, specification.ByID{ID: questionId})
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, &serverutils.NotFoundError{Resource: "question"}
	}

	if err := s.authorizeConversation(ctx, clientId, question.ConversationId); err != nil {
		return nil, err
	}

	answer, err := s.answers.FindByQuestionId(ctx, questionId)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return &dto.PollAnswerResponse{Ready: false}, nil
	}
	return &dto.PollAnswerResponse{
		Ready:  true,
		Answer: toAnswerResponse(answer),
	}, nil
}

func (s *chatbotService) GetConversations(ctx context.Context, clientId string) ([]dto.ConversationResponse, error) {
	conversations, err := s.conversations.FindAll(ctx,
		specification.ByClientID{ClientID: clientId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	res := make([]dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		res[i] = dto.ConversationResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return res, nil
}

func (s *chatbotService) GetHistory(ctx context.Context, clientId string, conversationId uuid.UUID) ([]dto.HistoryTurnResponse, error) {
	if err := s.authorizeConversation(ctx, clientId, conversationId); err != nil {
		return nil, err
	}

	questions, err := s.questions.FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]dto.HistoryTurnResponse, 0, len(questions))
	for _, q := range questions {
		answer, err := s.answers.FindByQuestionId(ctx, q.Id)
		if err != nil {
			return nil, err
		}
		turn := dto.HistoryTurnResponse{
			Question:  q.Message,
			CreatedAt: q.CreatedAt,
		}
		if answer != nil {
			turn.Answer = toAnswerResponse(answer)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *chatbotService) authorizeConversation(ctx context.Context, clientId string, conversationId uuid.UUID) error {
	conversation, err := s.conversations.FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByClientID{ClientID: clientId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return &serverutils.NotFoundError{Resource: "conversation"}
	}
	return nil
}

func toAnswerResponse(a *entity.Answer) *dto.AnswerResponse {
	sources := make([]dto.SourceResponse, 0, len(a.Sources))
	for _, src := range a.Sources {
		sources = append(sources, dto.SourceResponse{
			Relevancy: src.Relevancy,
			PassageId: src.PassageId,
			Title:     src.Title,
			ExactPath: src.ExactPath,
			Score:     src.Score,
			Used:      src.Used,
		})
	}
	return &dto.AnswerResponse{
		Id:                   a.Id,
		QuestionId:           a.QuestionId,
		Status:               string(a.Status),
		Message:              a.Message,
		RephrasedQuestion:    a.RephrasedQuestion,
		QuestionRoutingLabel: a.QuestionRoutingLabel,
		Sources:              sources,
		CreatedAt:            a.CreatedAt,
	}
}
