package rephrase

import (
	"context"
	"log"
	"strings"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"
)

// StepName is the metrics / llm_responses namespace of the rephraser.
const StepName = "question_rephrasing"

// DefaultHistoryDepth is how many answered question/answer pairs are handed
// to the rephraser at most.
const DefaultHistoryDepth = 5

// HistoryEntry is one answered question/answer pair from the conversation.
type HistoryEntry struct {
	Question string
	Answer   string
	Status   entity.AnswerStatus
}

// HistoryProvider hands the step the conversation turns preceding the
// question, most recent first. The pipeline itself never reads a datastore.
type HistoryProvider interface {
	RecentHistory(ctx context.Context, question *entity.Question, limit int) ([]HistoryEntry, error)
}

// Rephraser is one provider-specific rephrasing strategy.
type Rephraser interface {
	Rephrase(ctx context.Context, question string, history []HistoryEntry) (string, *llm.Response, error)
}

// Step rewrites a follow-up question into a standalone one so retrieval can
// work without the conversation. First turns and histories whose answers all
// carry excluded statuses are left untouched.
type Step struct {
	history  HistoryProvider
	rephrase Rephraser
	depth    int
	excluded map[entity.AnswerStatus]bool
	logger   *log.Logger
}

var _ pipeline.Step = &Step{}

func NewStep(history HistoryProvider, rephrase Rephraser, depth int, excluded []entity.AnswerStatus, logger *log.Logger) *Step {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	excludedSet := make(map[entity.AnswerStatus]bool, len(excluded))
	for _, status := range excluded {
		excludedSet[status] = true
	}
	return &Step{
		history:  history,
		rephrase: rephrase,
		depth:    depth,
		excluded: excludedSet,
		logger:   logger,
	}
}

func (s *Step) Name() string { return StepName }

func (s *Step) Run(ctx context.Context, pc *pipeline.Context) error {
	entries, err := s.history.RecentHistory(ctx, pc.Question, s.depth)
	if err != nil {
		return err
	}

	usable := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if s.excluded[e.Status] {
			continue
		}
		usable = append(usable, e)
	}
	if len(usable) == 0 {
		// First turn, or nothing in the history worth rephrasing against.
		return nil
	}
	if len(usable) > s.depth {
		usable = usable[:s.depth]
	}

	start := time.Now()
	rephrased, resp, err := s.rephrase.Rephrase(ctx, pc.QuestionMessage(), usable)
	if err != nil {
		// Rephrasing is best effort: retrieval still works on the
		// original question, so a provider failure here does not end
		// the run.
		s.logger.Printf("[REPHRASE] failed, keeping original question: %v", err)
		return nil
	}

	rephrased = strings.TrimSpace(rephrased)
	if rephrased != "" {
		pc.SetQuestionMessage(rephrased)
	}

	pc.Answer.AssignLLMResponse(StepName, resp.Raw)
	pc.Answer.AssignMetrics(StepName, entity.StepMetrics{
		DurationMs:       time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CachedTokens:     resp.Usage.CachedTokens,
		Model:            resp.Model,
	})

	s.logger.Printf("[REPHRASE] %q -> %q", pc.Question.Message, pc.QuestionMessage())
	return nil
}
