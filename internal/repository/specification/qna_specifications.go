package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByClientID struct {
	ClientID string
}

func (s ByClientID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("client_id = ?", s.ClientID)
}

type ByQuestionID struct {
	QuestionID uuid.UUID
}

func (s ByQuestionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question_id = ?", s.QuestionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByDigest struct {
	Digest string
}

func (s ByDigest) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("digest = ?", s.Digest)
}

type ByLocale struct {
	Locale string
}

func (s ByLocale) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("locale = ?", s.Locale)
}
