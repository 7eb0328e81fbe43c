package implementation

import (
	"context"
	"errors"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/mapper"
	"qna-chat-be/internal/model"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnswerMapper
}

func NewAnswerRepository(db *gorm.DB) contract.AnswerRepository {
	return &AnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnswerMapper(),
	}
}

func (r *AnswerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnswerRepositoryImpl) Create(ctx context.Context, answer *entity.Answer, conversationId uuid.UUID) (bool, error) {
	m := r.mapper.ToModel(answer, conversationId)
	sources := m.Sources
	m.Sources = nil

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}},
			DoNothing: true,
		}).Create(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another worker already answered this question.
			return nil
		}
		created = true
		if len(sources) == 0 {
			return nil
		}
		for i := range sources {
			sources[i].AnswerId = m.Id
		}
		return tx.Create(&sources).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *AnswerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error) {
	var m model.Answer
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Sources"), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnswerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Answer, error) {
	var models []*model.Answer
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Sources"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Answer, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *AnswerRepositoryImpl) FindByQuestionId(ctx context.Context, questionId uuid.UUID) (*entity.Answer, error) {
	return r.FindOne(ctx, specification.ByQuestionID{QuestionID: questionId})
}

func (r *AnswerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Answer{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
