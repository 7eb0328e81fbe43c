package contract

import (
	"context"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPassage wraps a passage with its cosine similarity (1.0 = identical).
type ScoredPassage struct {
	Passage    entity.Passage
	Similarity float64
}

type PassageRepository interface {
	Create(ctx context.Context, passage *entity.Passage, embedding []float32) error
	DeleteByDigest(ctx context.Context, digest string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Passage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Advanced
	// SearchSimilarWithScore returns passages with similarity scores above
	// the threshold, most similar first, restricted to one locale.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, locale string, threshold float64) ([]*ScoredPassage, error)
}
