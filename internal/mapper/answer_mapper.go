package mapper

import (
	"encoding/json"

	"qna-chat-be/internal/entity"
	"qna-chat-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnswerMapper struct{}

func NewAnswerMapper() *AnswerMapper {
	return &AnswerMapper{}
}

// ToModel flattens the answer and its sources for persistence. The jsonb
// audit columns go through a JSON round trip so the stored shape matches the
// entity's wire representation exactly.
func (m *AnswerMapper) ToModel(a *entity.Answer, conversationId uuid.UUID) *model.Answer {
	if a == nil {
		return nil
	}

	sources := make([]model.AnswerSource, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = model.AnswerSource{
			AnswerId:      a.Id,
			PassageId:     s.PassageId,
			Relevancy:     s.Relevancy,
			Title:         s.Title,
			HeadingPath:   s.HeadingPath,
			BasePath:      s.BasePath,
			ExactPath:     s.ExactPath,
			Locale:        s.Locale,
			Score:         s.Score,
			WeightedScore: s.WeightedScore,
			Used:          s.Used,
		}
	}

	return &model.Answer{
		Id:                             a.Id,
		QuestionId:                     a.QuestionId,
		ConversationId:                 conversationId,
		Message:                        a.Message,
		Status:                         string(a.Status),
		RephrasedQuestion:              a.RephrasedQuestion,
		QuestionRoutingLabel:           a.QuestionRoutingLabel,
		QuestionRoutingConfidenceScore: a.QuestionRoutingConfidenceScore,
		GuardrailResults:               toJSONMap(a.GuardrailResults),
		LLMResponses:                   toJSONMap(a.LLMResponses),
		Metrics:                        toJSONMap(a.Metrics),
		CreatedAt:                      a.CreatedAt,
		Sources:                        sources,
	}
}

func (m *AnswerMapper) ToEntity(a *model.Answer) *entity.Answer {
	if a == nil {
		return nil
	}

	sources := make([]entity.Source, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = entity.Source{
			Relevancy:     s.Relevancy,
			PassageId:     s.PassageId,
			Title:         s.Title,
			HeadingPath:   s.HeadingPath,
			BasePath:      s.BasePath,
			ExactPath:     s.ExactPath,
			Locale:        s.Locale,
			Score:         s.Score,
			WeightedScore: s.WeightedScore,
			Used:          s.Used,
		}
	}

	out := &entity.Answer{
		Id:                             a.Id,
		QuestionId:                     a.QuestionId,
		Status:                         entity.AnswerStatus(a.Status),
		Message:                        a.Message,
		RephrasedQuestion:              a.RephrasedQuestion,
		QuestionRoutingLabel:           a.QuestionRoutingLabel,
		QuestionRoutingConfidenceScore: a.QuestionRoutingConfidenceScore,
		GuardrailResults:               make(map[string]entity.GuardrailResult),
		LLMResponses:                   make(map[string]json.RawMessage),
		Metrics:                        make(map[string]entity.StepMetrics),
		Sources:                        sources,
		CreatedAt:                      a.CreatedAt,
	}

	fromJSONMap(a.GuardrailResults, &out.GuardrailResults)
	fromJSONMap(a.LLMResponses, &out.LLMResponses)
	fromJSONMap(a.Metrics, &out.Metrics)
	return out
}

func toJSONMap[V any](in map[string]V) datatypes.JSONMap {
	if len(in) == 0 {
		return datatypes.JSONMap{}
	}
	out := make(datatypes.JSONMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fromJSONMap[V any](in datatypes.JSONMap, out *map[string]V) {
	if len(in) == 0 {
		return
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, out)
}
