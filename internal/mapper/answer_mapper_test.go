package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"qna-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAnswerMapperRoundTrip(t *testing.T) {
	m := NewAnswerMapper()
	conversationId := uuid.New()

	rephrased := "how do I reset my password without email access?"
	label := "genuine_request"

	answer := entity.NewPendingAnswer(uuid.New())
	answer.Status = entity.AnswerStatusAnswered
	answer.Message = "Use the forgot password link."
	answer.RephrasedQuestion = &rephrased
	answer.QuestionRoutingLabel = &label
	answer.SetGuardrailResult("jailbreak", entity.GuardrailResult{Status: entity.GuardrailStatusPass})
	answer.SetGuardrailResult("answer_guardrail", entity.GuardrailResult{
		Status:   entity.GuardrailStatusFail,
		Failures: []string{"unsafe_advice"},
	})
	answer.AssignLLMResponse("answer_composition", json.RawMessage(`{"choices":[{"text":"..."}]}`))
	answer.AssignMetrics("answer_composition", entity.StepMetrics{
		DurationMs:       1200,
		PromptTokens:     900,
		CompletionTokens: 130,
		Model:            "gpt-4o-mini",
	})
	answer.Sources = []entity.Source{
		{Relevancy: 0, PassageId: "p1", Title: "Password reset", Score: 0.92, WeightedScore: 0.9, Used: true},
		{Relevancy: 1, PassageId: "p2", Title: "Account recovery", Score: 0.81, WeightedScore: 0.81},
	}
	answer.CreatedAt = time.Now().Truncate(time.Second)

	model := m.ToModel(answer, conversationId)
	assert.Equal(t, conversationId, model.ConversationId)
	assert.Equal(t, "answered", model.Status)
	assert.Len(t, model.Sources, 2)
	assert.Equal(t, answer.Id, model.Sources[0].AnswerId)

	back := m.ToEntity(model)
	assert.Equal(t, answer.Id, back.Id)
	assert.Equal(t, answer.Status, back.Status)
	assert.Equal(t, answer.Message, back.Message)
	assert.Equal(t, rephrased, *back.RephrasedQuestion)
	assert.Equal(t, label, *back.QuestionRoutingLabel)

	assert.Equal(t, entity.GuardrailStatusPass, back.GuardrailResults["jailbreak"].Status)
	assert.Equal(t, []string{"unsafe_advice"}, back.GuardrailResults["answer_guardrail"].Failures)

	assert.JSONEq(t, `{"choices":[{"text":"..."}]}`, string(back.LLMResponses["answer_composition"]))

	metrics := back.Metrics["answer_composition"]
	assert.Equal(t, int64(1200), metrics.DurationMs)
	assert.Equal(t, 900, metrics.PromptTokens)
	assert.Equal(t, "gpt-4o-mini", metrics.Model)

	assert.Len(t, back.Sources, 2)
	assert.True(t, back.Sources[0].Used)
	assert.False(t, back.Sources[1].Used)
}

func TestAnswerMapperNil(t *testing.T) {
	m := NewAnswerMapper()
	assert.Nil(t, m.ToModel(nil, uuid.New()))
	assert.Nil(t, m.ToEntity(nil))
}
