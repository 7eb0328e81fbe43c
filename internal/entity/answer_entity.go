package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerStatus is the closed taxonomy of terminal answer states.
//
// Three families:
//   - guardrail-triggered (guardrails_*, unanswerable_*, clarification,
//     banned): expected, policy-driven non-answers, always paired with a
//     canned message
//   - error_*: provider/infrastructure failures
//   - answered: the single success value
//
// Pending is the construction sentinel; a finished pipeline never hands it
// back to the caller.
type AnswerStatus string

const (
	AnswerStatusPending  AnswerStatus = "pending"
	AnswerStatusAnswered AnswerStatus = "answered"

	AnswerStatusClarification AnswerStatus = "clarification"
	AnswerStatusBanned        AnswerStatus = "banned"

	AnswerStatusGuardrailsForbiddenWords  AnswerStatus = "guardrails_forbidden_words"
	AnswerStatusGuardrailsJailbreak       AnswerStatus = "guardrails_jailbreak"
	AnswerStatusGuardrailsQuestionRouting AnswerStatus = "guardrails_question_routing"
	AnswerStatusGuardrailsAnswer          AnswerStatus = "guardrails_answer"
	AnswerStatusUnanswerableNoContent     AnswerStatus = "unanswerable_no_content"
	AnswerStatusUnanswerableLLMDeclined   AnswerStatus = "unanswerable_llm_declined"

	AnswerStatusErrorForbiddenWords     AnswerStatus = "error_forbidden_words"
	AnswerStatusErrorJailbreak          AnswerStatus = "error_jailbreak"
	AnswerStatusErrorQuestionRephrasing AnswerStatus = "error_question_rephrasing"
	AnswerStatusErrorQuestionRouting    AnswerStatus = "error_question_routing"
	AnswerStatusErrorAnswerGuardrail    AnswerStatus = "error_answer_guardrail"
	AnswerStatusErrorContextLength      AnswerStatus = "error_context_length_exceeded"
	AnswerStatusErrorInvalidLLMResponse AnswerStatus = "error_invalid_llm_response"
	AnswerStatusErrorRequest            AnswerStatus = "error_request"
	AnswerStatusErrorTimeout            AnswerStatus = "error_timeout"
)

// GuardrailStatus is the per-guardrail classification outcome.
type GuardrailStatus string

const (
	GuardrailStatusPass  GuardrailStatus = "pass"
	GuardrailStatusFail  GuardrailStatus = "fail"
	GuardrailStatusError GuardrailStatus = "error"
)

// GuardrailResult stores one guardrail's verdict on an answer.
// Failures holds the violated policy tags, ordered as reported.
type GuardrailResult struct {
	Status   GuardrailStatus `json:"status"`
	Failures []string        `json:"failures,omitempty"`
}

// StepMetrics records the cost of one pipeline step: wall time, token usage
// and the model that served the call.
type StepMetrics struct {
	DurationMs       int64  `json:"duration_ms"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	CachedTokens     int    `json:"cached_tokens"`
	Model            string `json:"model"`
}

// Answer is the evolving output of one pipeline run. It is created pending
// at Context construction, mutated in place by the steps, and persisted by
// the caller once the runner returns.
type Answer struct {
	Id         uuid.UUID
	QuestionId uuid.UUID

	Status  AnswerStatus
	Message string

	RephrasedQuestion              *string
	QuestionRoutingLabel           *string
	QuestionRoutingConfidenceScore *float64

	// GuardrailResults is keyed by guardrail name (forbidden_words,
	// jailbreak, question_routing, answer).
	GuardrailResults map[string]GuardrailResult

	// LLMResponses maps step name to the raw provider payload. Opaque:
	// kept for audit and export, never interpreted downstream.
	LLMResponses map[string]json.RawMessage

	// Metrics maps step name to that step's cost figures. Each step owns
	// exactly one key.
	Metrics map[string]StepMetrics

	// Sources are ordered by relevancy ascending (0 = most relevant).
	Sources []Source

	CreatedAt time.Time
}

// NewPendingAnswer creates the empty answer record attached to a question at
// pipeline start.
func NewPendingAnswer(questionId uuid.UUID) *Answer {
	return &Answer{
		Id:               uuid.New(),
		QuestionId:       questionId,
		Status:           AnswerStatusPending,
		GuardrailResults: make(map[string]GuardrailResult),
		LLMResponses:     make(map[string]json.RawMessage),
		Metrics:          make(map[string]StepMetrics),
		CreatedAt:        time.Now(),
	}
}

// AssignMetrics records a step's cost figures under its own name.
func (a *Answer) AssignMetrics(step string, m StepMetrics) {
	a.Metrics[step] = m
}

// AssignLLMResponse records a step's raw provider payload under its own name.
func (a *Answer) AssignLLMResponse(step string, raw json.RawMessage) {
	a.LLMResponses[step] = raw
}

// SetGuardrailResult stores a guardrail verdict under the guardrail's name.
func (a *Answer) SetGuardrailResult(name string, r GuardrailResult) {
	a.GuardrailResults[name] = r
}

// MarkSourcesUsed flags every source whose passage id appears in ids.
func (a *Answer) MarkSourcesUsed(ids []string) {
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	for i := range a.Sources {
		if used[a.Sources[i].PassageId] {
			a.Sources[i].Used = true
		}
	}
}
