package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type codes used on the bus.
const (
	TypeQuestionCreated = "QUESTION_CREATED"
	TypeAnswerCreated   = "ANSWER_CREATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUESTION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used when reconstructing events
// from the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewQuestionCreated announces a persisted question awaiting an answer.
func NewQuestionCreated(questionId, conversationId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeQuestionCreated,
		Data: map[string]interface{}{
			"question_id":     questionId.String(),
			"conversation_id": conversationId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// NewAnswerCreated announces a finished answer ready for delivery.
func NewAnswerCreated(answerId, questionId, conversationId uuid.UUID, status string) Event {
	return BaseEvent{
		Type: TypeAnswerCreated,
		Data: map[string]interface{}{
			"answer_id":       answerId.String(),
			"question_id":     questionId.String(),
			"conversation_id": conversationId.String(),
			"status":          status,
		},
		OccurredAt: time.Now(),
	}
}
