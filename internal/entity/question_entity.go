package entity

import (
	"time"

	"github.com/google/uuid"
)

// Question is the immutable input of one pipeline run. It is owned by its
// conversation and is never mutated by the pipeline.
type Question struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Message        string
	CreatedAt      time.Time
}
