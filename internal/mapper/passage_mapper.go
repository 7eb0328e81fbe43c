package mapper

import (
	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/model"
)

type PassageMapper struct{}

func NewPassageMapper() *PassageMapper {
	return &PassageMapper{}
}

func (m *PassageMapper) ToEntity(p *model.Passage) entity.Passage {
	return entity.Passage{
		Id:          p.Id.String(),
		Digest:      p.Digest,
		Locale:      p.Locale,
		Title:       p.Title,
		Description: p.Description,
		HeadingPath: p.HeadingPath,
		BasePath:    p.BasePath,
		ExactPath:   p.ExactPath,
		Content:     p.Content,
	}
}
