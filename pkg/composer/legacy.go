package composer

import (
	"context"
	"log"
	"strings"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/guardrail"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"
)

// LegacyStep is the unstructured composition variant: plain-text answer, no
// citation or completeness signals, sources left unused. It re-checks the
// working question against the forbidden-word list because the rephraser may
// have introduced terms the dedicated forbidden-terms step never saw.
type LegacyStep struct {
	core
	client   llm.Client
	model    string
	wordlist *guardrail.WordlistChecker
}

var _ pipeline.Step = &LegacyStep{}

func NewLegacyStep(client llm.Client, model string, config Config, forbiddenWords []string, registry *canned.Registry, tracker pipeline.ErrorTracker, logger *log.Logger) *LegacyStep {
	return &LegacyStep{
		core: core{
			config:   config,
			registry: registry,
			tracker:  tracker,
			logger:   logger,
		},
		client:   client,
		model:    model,
		wordlist: guardrail.NewWordlistChecker(forbiddenWords),
	}
}

func (s *LegacyStep) Name() string { return StepName }

func (s *LegacyStep) Run(ctx context.Context, pc *pipeline.Context) error {
	if matches := s.wordlist.Matches(pc.QuestionMessage()); len(matches) > 0 {
		pc.Answer.SetGuardrailResult(guardrail.StepForbiddenWords, entity.GuardrailResult{
			Status:   entity.GuardrailStatusFail,
			Failures: matches,
		})
		return pc.Halt(entity.AnswerStatusGuardrailsForbiddenWords, s.registry.Fixed(canned.KeyForbiddenWords))
	}

	start := time.Now()
	resp, err := s.client.Chat(ctx, &llm.Request{
		System:      s.config.SystemTemplate,
		Messages:    []llm.Message{{Role: "user", Content: s.buildUserPrompt(pc)}},
		Model:       s.model,
		Temperature: 0.2,
	})
	if err != nil {
		return s.mapProviderError(ctx, pc, err, start)
	}

	message := strings.TrimSpace(resp.Text)
	if message == "" {
		return s.invalidResult(pc, resp, start, "empty answer text")
	}

	s.record(pc, resp, start)
	pc.Answer.Message = message
	pc.Answer.Status = entity.AnswerStatusAnswered
	return nil
}
