package guardrail

import (
	"context"
	"errors"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"
)

// Step names double as the metrics / llm_responses namespaces.
const (
	StepForbiddenWords  = "forbidden_words"
	StepJailbreak       = "jailbreak"
	StepQuestionRouting = "question_routing_guardrail"
	StepAnswer          = "answer_guardrail"
)

// Step is one guardrail in the chain. All four guardrails share the same
// contract: classify the target text, continue on pass, halt with the
// policy's canned rejection on fail, halt with the matching error status on
// a provider failure. The user sees an equivalent refusal either way.
type Step struct {
	name          string
	checker       Checker
	policy        Policy
	failStatus    entity.AnswerStatus
	errorStatus   entity.AnswerStatus
	cannedMessage string
	target        func(*pipeline.Context) string
	skip          func(*pipeline.Context) bool
}

var _ pipeline.Step = &Step{}

func (s *Step) Name() string { return s.name }

func (s *Step) Run(ctx context.Context, pc *pipeline.Context) error {
	if s.skip != nil && s.skip(pc) {
		return nil
	}

	start := time.Now()
	verdict, err := s.checker.Check(ctx, s.target(pc), s.policy)
	if err != nil {
		var respErr *llm.ResponseError
		if errors.As(err, &respErr) && respErr.Response != nil {
			s.record(pc, respErr.Response, start)
		}
		pc.Answer.SetGuardrailResult(s.name, entity.GuardrailResult{Status: entity.GuardrailStatusError})
		return pc.Halt(s.errorStatus, s.cannedMessage)
	}

	s.record(pc, verdict.Response, start)

	if verdict.Status == VerdictFail {
		pc.Answer.SetGuardrailResult(s.name, entity.GuardrailResult{
			Status:   entity.GuardrailStatusFail,
			Failures: verdict.Failures,
		})
		return pc.Halt(s.failStatus, s.cannedMessage)
	}

	pc.Answer.SetGuardrailResult(s.name, entity.GuardrailResult{Status: entity.GuardrailStatusPass})
	return nil
}

func (s *Step) record(pc *pipeline.Context, resp *llm.Response, start time.Time) {
	if resp == nil {
		return // static checkers have nothing to record
	}
	pc.Answer.AssignLLMResponse(s.name, resp.Raw)
	pc.Answer.AssignMetrics(s.name, entity.StepMetrics{
		DurationMs:       time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CachedTokens:     resp.Usage.CachedTokens,
		Model:            resp.Model,
	})
}

// NewForbiddenTermsStep gates the working question text against the static
// forbidden-word list. Runs first in the chain, before any provider call.
func NewForbiddenTermsStep(words []string, registry *canned.Registry) *Step {
	return &Step{
		name:          StepForbiddenWords,
		checker:       NewWordlistChecker(words),
		policy:        Policy{Name: "forbidden_words"},
		failStatus:    entity.AnswerStatusGuardrailsForbiddenWords,
		errorStatus:   entity.AnswerStatusErrorForbiddenWords,
		cannedMessage: registry.Fixed(canned.KeyForbiddenWords),
		target:        func(pc *pipeline.Context) string { return pc.QuestionMessage() },
	}
}

// NewJailbreakStep gates the question against the jailbreak policy.
func NewJailbreakStep(checker Checker, policy Policy, registry *canned.Registry) *Step {
	return &Step{
		name:          StepJailbreak,
		checker:       checker,
		policy:        policy,
		failStatus:    entity.AnswerStatusGuardrailsJailbreak,
		errorStatus:   entity.AnswerStatusErrorJailbreak,
		cannedMessage: registry.Fixed(canned.KeyJailbreak),
		target:        func(pc *pipeline.Context) string { return pc.QuestionMessage() },
	}
}

// NewQuestionRoutingStep gates questions whose routing label is anything
// other than the genuine content request label. A request already identified
// as a real content question has nothing further to gate, so the step no-ops
// in that case.
func NewQuestionRoutingStep(checker Checker, policy Policy, registry *canned.Registry, genuineLabel string) *Step {
	return &Step{
		name:          StepQuestionRouting,
		checker:       checker,
		policy:        policy,
		failStatus:    entity.AnswerStatusGuardrailsQuestionRouting,
		errorStatus:   entity.AnswerStatusErrorQuestionRouting,
		cannedMessage: registry.Fixed(canned.KeyQuestionRouting),
		target:        func(pc *pipeline.Context) string { return pc.QuestionMessage() },
		skip: func(pc *pipeline.Context) bool {
			return pc.Answer.QuestionRoutingLabel != nil && *pc.Answer.QuestionRoutingLabel == genuineLabel
		},
	}
}

// NewAnswerStep gates the composed draft answer before it is returned.
func NewAnswerStep(checker Checker, policy Policy, registry *canned.Registry) *Step {
	return &Step{
		name:          StepAnswer,
		checker:       checker,
		policy:        policy,
		failStatus:    entity.AnswerStatusGuardrailsAnswer,
		errorStatus:   entity.AnswerStatusErrorAnswerGuardrail,
		cannedMessage: registry.Fixed(canned.KeyAnswerGuardrail),
		target:        func(pc *pipeline.Context) string { return pc.Answer.Message },
	}
}
