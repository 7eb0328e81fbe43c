package retrieval

import (
	"context"
	"log"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/pipeline"
)

// StepName is the metrics namespace of the retrieval step.
const StepName = "search"

// Searcher is the retrieval collaborator: a black box returning ranked
// passages for a query, or an empty slice when nothing is relevant.
type Searcher interface {
	Search(ctx context.Context, query string) ([]entity.Passage, error)
}

// Step fetches the passages the composer will ground its answer in. A run
// with no relevant content stops here with the matching canned message; the
// composer is never invoked.
type Step struct {
	searcher Searcher
	registry *canned.Registry
	logger   *log.Logger
}

var _ pipeline.Step = &Step{}

func NewStep(searcher Searcher, registry *canned.Registry, logger *log.Logger) *Step {
	return &Step{
		searcher: searcher,
		registry: registry,
		logger:   logger,
	}
}

func (s *Step) Name() string { return StepName }

func (s *Step) Run(ctx context.Context, pc *pipeline.Context) error {
	passages, err := s.searcher.Search(ctx, pc.QuestionMessage())
	if err != nil {
		s.logger.Printf("[SEARCH] retrieval failed: %v", err)
		return pc.Halt(entity.AnswerStatusErrorRequest, s.registry.Fixed(canned.KeyUnsuccessfulRequest))
	}

	if len(passages) == 0 {
		s.logger.Printf("[SEARCH] no relevant passages for %q", pc.QuestionMessage())
		return pc.Halt(entity.AnswerStatusUnanswerableNoContent, s.registry.Fixed(canned.KeyNoRelevantContent))
	}

	s.logger.Printf("[SEARCH] %d passages retrieved", len(passages))
	pc.SetSearchResults(passages)
	return nil
}
