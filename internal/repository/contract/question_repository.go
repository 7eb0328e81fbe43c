package contract

import (
	"context"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// AnsweredTurn pairs a question with its finished answer, used to rebuild
// conversation history for the rephraser and the history endpoint.
type AnsweredTurn struct {
	Question *entity.Question
	Answer   *entity.Answer
}

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Advanced
	// FindUnansweredBefore returns questions with no answer row created
	// before the cutoff, oldest first. The watchdog feeds on these.
	FindUnansweredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Question, error)
	// FindAnsweredTurns returns question/answer pairs of a conversation
	// created before the given time, most recent first.
	FindAnsweredTurns(ctx context.Context, conversationId uuid.UUID, before time.Time, limit int) ([]*AnsweredTurn, error)
}
