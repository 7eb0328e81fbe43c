package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/pipeline"

	"github.com/google/uuid"
)

type stubSearcher struct {
	passages []entity.Passage
	err      error
	query    string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]entity.Passage, error) {
	s.query = query
	return s.passages, s.err
}

func newTestRegistry() *canned.Registry {
	return canned.NewRegistry(map[string]string{
		canned.KeyNoRelevantContent:   "We could not find anything about that in our docs.",
		canned.KeyUnsuccessfulRequest: "Something went wrong, please try again.",
	}, nil, 1)
}

func newTestContext(message string) *pipeline.Context {
	return pipeline.NewContext(&entity.Question{
		Id:             uuid.New(),
		ConversationId: uuid.New(),
		Message:        message,
	})
}

func TestRunStoresRankedPassages(t *testing.T) {
	searcher := &stubSearcher{passages: []entity.Passage{
		{Id: "p1", Title: "Password reset", Score: 0.92},
		{Id: "p2", Title: "Account recovery", Score: 0.81},
	}}
	step := NewStep(searcher, newTestRegistry(), log.New(io.Discard, "", 0))
	pc := newTestContext("how do I reset my password")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if searcher.query != "how do I reset my password" {
		t.Errorf("searched %q, want the working question text", searcher.query)
	}
	if len(pc.SearchResults()) != 2 {
		t.Fatalf("SearchResults = %d, want 2", len(pc.SearchResults()))
	}
	if len(pc.Answer.Sources) != 2 || pc.Answer.Sources[0].PassageId != "p1" {
		t.Errorf("Sources = %+v", pc.Answer.Sources)
	}
}

func TestRunSearchesRephrasedQuestion(t *testing.T) {
	searcher := &stubSearcher{passages: []entity.Passage{{Id: "p1"}}}
	step := NewStep(searcher, newTestRegistry(), log.New(io.Discard, "", 0))
	pc := newTestContext("and without email access?")
	pc.SetQuestionMessage("how do I reset my password without email access?")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if searcher.query != "how do I reset my password without email access?" {
		t.Errorf("searched %q, want the rephrased question", searcher.query)
	}
}

func TestRunNoContentHalts(t *testing.T) {
	step := NewStep(&stubSearcher{}, newTestRegistry(), log.New(io.Discard, "", 0))
	pc := newTestContext("something entirely off the map")

	err := step.Run(context.Background(), pc)
	if !errors.Is(err, pipeline.ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted", err)
	}
	if pc.Answer.Status != entity.AnswerStatusUnanswerableNoContent {
		t.Errorf("Status = %s, want unanswerable_no_content", pc.Answer.Status)
	}
	if pc.Answer.Message != "We could not find anything about that in our docs." {
		t.Errorf("Message = %q", pc.Answer.Message)
	}
}

func TestRunSearchFailureHalts(t *testing.T) {
	step := NewStep(&stubSearcher{err: errors.New("vector index down")}, newTestRegistry(), log.New(io.Discard, "", 0))
	pc := newTestContext("a question")

	if err := step.Run(context.Background(), pc); !errors.Is(err, pipeline.ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted", err)
	}
	if pc.Answer.Status != entity.AnswerStatusErrorRequest {
		t.Errorf("Status = %s, want error_request", pc.Answer.Status)
	}
}
