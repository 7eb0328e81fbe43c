package implementation

import (
	"context"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/mapper"
	"qna-chat-be/internal/model"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageMapper
}

func NewPassageRepository(db *gorm.DB) contract.PassageRepository {
	return &PassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageMapper(),
	}
}

func (r *PassageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PassageRepositoryImpl) Create(ctx context.Context, passage *entity.Passage, embedding []float32) error {
	m := &model.Passage{
		Digest:      passage.Digest,
		Locale:      passage.Locale,
		Title:       passage.Title,
		Description: passage.Description,
		HeadingPath: passage.HeadingPath,
		BasePath:    passage.BasePath,
		ExactPath:   passage.ExactPath,
		Content:     passage.Content,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		passage.Id = m.Id.String()
		return tx.Create(&model.PassageEmbedding{
			PassageId:      m.Id,
			EmbeddingValue: pgvector.NewVector(embedding),
		}).Error
	})
}

func (r *PassageRepositoryImpl) DeleteByDigest(ctx context.Context, digest string) error {
	subQuery := r.db.Table("passages").Select("id").Where("digest = ?", digest)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("passage_id IN (?)", subQuery).Delete(&model.PassageEmbedding{}).Error; err != nil {
			return err
		}
		return tx.Where("digest = ?", digest).Delete(&model.Passage{}).Error
	})
}

func (r *PassageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("passage_id = ?", id).Delete(&model.PassageEmbedding{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Passage{}, id).Error
	})
}

func (r *PassageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Passage, error) {
	var models []*model.Passage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]entity.Passage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PassageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Passage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore returns passages above the similarity threshold,
// most similar first. Cosine distance in pgvector is 1 - cosine_similarity,
// so 1 - (embedding_value <=> query) recovers the similarity.
func (r *PassageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, locale string, threshold float64) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Passage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("passages").
		Select("passages.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN passage_embeddings ON passage_embeddings.passage_id = passages.id").
		Where("passages.locale = ?", locale).
		Where("passages.deleted_at IS NULL").
		Where("passage_embeddings.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassage{
			Passage:    r.mapper.ToEntity(&res.Passage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
