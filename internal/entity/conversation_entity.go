package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation groups the questions asked by one client into a single thread.
type Conversation struct {
	Id        uuid.UUID
	ClientId  string
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
