package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer holds one pipeline run's outcome. QuestionId is unique: at most one
// answer per question, concurrent workers race on insert and the loser drops
// its copy.
type Answer struct {
	Id                             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionId                     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	ConversationId                 uuid.UUID         `gorm:"type:uuid;not null;index"`
	Message                        string            `gorm:"type:text"`
	Status                         string            `gorm:"type:varchar(50);not null;index"`
	RephrasedQuestion              *string           `gorm:"type:text"`
	QuestionRoutingLabel           *string           `gorm:"type:varchar(50)"`
	QuestionRoutingConfidenceScore *float64          `gorm:"type:double precision"`
	GuardrailResults               datatypes.JSONMap `gorm:"type:jsonb"`
	LLMResponses                   datatypes.JSONMap `gorm:"column:llm_responses;type:jsonb"`
	Metrics                        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt                      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt                      time.Time         `gorm:"autoUpdateTime"`
	DeletedAt                      gorm.DeletedAt    `gorm:"index"`

	Sources []AnswerSource `gorm:"foreignKey:AnswerId"`
}

func (Answer) TableName() string {
	return "answers"
}

// AnswerSource is one retrieved passage attributed to an answer, in relevancy
// order. Used marks passages the composer actually cited.
type AnswerSource struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnswerId      uuid.UUID `gorm:"type:uuid;not null;index"`
	PassageId     string    `gorm:"type:varchar(100);not null"`
	Relevancy     int       `gorm:"not null"`
	Title         string    `gorm:"type:text"`
	HeadingPath   string    `gorm:"type:text"`
	BasePath      string    `gorm:"type:text"`
	ExactPath     string    `gorm:"type:text"`
	Locale        string    `gorm:"type:varchar(10)"`
	Score         float64   `gorm:"type:double precision"`
	WeightedScore float64   `gorm:"type:double precision"`
	Used          bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (AnswerSource) TableName() string {
	return "answer_sources"
}
