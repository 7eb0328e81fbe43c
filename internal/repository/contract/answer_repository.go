package contract

import (
	"context"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnswerRepository interface {
	// Create inserts the answer with its sources. The question_id unique
	// index makes concurrent workers race safely: the first insert wins and
	// the losers get created=false back.
	Create(ctx context.Context, answer *entity.Answer, conversationId uuid.UUID) (created bool, err error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Answer, error)
	FindByQuestionId(ctx context.Context, questionId uuid.UUID) (*entity.Answer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
