package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Passage is one indexed chunk of published content.
type Passage struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Digest      string         `gorm:"type:varchar(64);not null;uniqueIndex"` // content hash, skips re-embedding unchanged chunks
	Locale      string         `gorm:"type:varchar(10);not null;index"`
	Title       string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text"`
	HeadingPath string         `gorm:"type:text"`
	BasePath    string         `gorm:"type:text;not null"`
	ExactPath   string         `gorm:"type:text;not null"`
	Content     string         `gorm:"type:text;not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Passage) TableName() string {
	return "passages"
}

type PassageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PassageId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (PassageEmbedding) TableName() string {
	return "passage_embeddings"
}
