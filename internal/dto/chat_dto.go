package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
	Message        string     `json:"message" validate:"required,min=1,max=2000"`
	Locale         string     `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}

type AskQuestionResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	QuestionId     uuid.UUID `json:"question_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type SourceResponse struct {
	Relevancy int     `json:"relevancy"`
	PassageId string  `json:"passage_id"`
	Title     string  `json:"title"`
	ExactPath string  `json:"exact_path"`
	Score     float64 `json:"score"`
	Used      bool    `json:"used"`
}

type AnswerResponse struct {
	Id                   uuid.UUID        `json:"id"`
	QuestionId           uuid.UUID        `json:"question_id"`
	Status               string           `json:"status"`
	Message              string           `json:"message"`
	RephrasedQuestion    *string          `json:"rephrased_question,omitempty"`
	QuestionRoutingLabel *string          `json:"question_routing_label,omitempty"`
	Sources              []SourceResponse `json:"sources,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}

// PollAnswerResponse wraps polling: Ready is false while the worker is still
// running the pipeline.
type PollAnswerResponse struct {
	Ready  bool            `json:"ready"`
	Answer *AnswerResponse `json:"answer,omitempty"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type HistoryTurnResponse struct {
	Question  string          `json:"question"`
	Answer    *AnswerResponse `json:"answer"`
	CreatedAt time.Time       `json:"created_at"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily question limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
