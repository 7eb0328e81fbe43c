package implementation

import (
	"context"
	"errors"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/mapper"
	"qna-chat-be/internal/model"
	"qna-chat-be/internal/repository/contract"
	"qna-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionRepositoryImpl struct {
	db           *gorm.DB
	mapper       *mapper.QuestionMapper
	answerMapper *mapper.AnswerMapper
}

func NewQuestionRepository(db *gorm.DB) contract.QuestionRepository {
	return &QuestionRepositoryImpl{
		db:           db,
		mapper:       mapper.NewQuestionMapper(),
		answerMapper: mapper.NewAnswerMapper(),
	}
}

func (r *QuestionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *entity.Question) error {
	m := r.mapper.ToModel(question)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*question = *r.mapper.ToEntity(m)
	return nil
}

func (r *QuestionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Question{}, id).Error
}

func (r *QuestionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error) {
	var m model.Question
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QuestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error) {
	var models []*model.Question
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Question, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QuestionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Question{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QuestionRepositoryImpl) FindUnansweredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Question, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []*model.Question
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN answers ON answers.question_id = questions.id AND answers.deleted_at IS NULL").
		Where("answers.id IS NULL").
		Where("questions.created_at < ?", cutoff).
		Order("questions.created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Question, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QuestionRepositoryImpl) FindAnsweredTurns(ctx context.Context, conversationId uuid.UUID, before time.Time, limit int) ([]*contract.AnsweredTurn, error) {
	if limit <= 0 {
		limit = 10
	}
	var questions []*model.Question
	err := r.db.WithContext(ctx).
		Joins("JOIN answers ON answers.question_id = questions.id AND answers.deleted_at IS NULL").
		Where("questions.conversation_id = ?", conversationId).
		Where("questions.created_at < ?", before).
		Order("questions.created_at DESC").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.Id
	}
	var answers []*model.Answer
	if err := r.db.WithContext(ctx).Where("question_id IN ?", ids).Find(&answers).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]*model.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionId] = a
	}

	turns := make([]*contract.AnsweredTurn, 0, len(questions))
	for _, q := range questions {
		a, ok := byQuestion[q.Id]
		if !ok {
			continue
		}
		turns = append(turns, &contract.AnsweredTurn{
			Question: r.mapper.ToEntity(q),
			Answer:   r.answerMapper.ToEntity(a),
		})
	}
	return turns, nil
}
