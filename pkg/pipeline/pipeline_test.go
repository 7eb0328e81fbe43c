package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"qna-chat-be/internal/entity"

	"github.com/google/uuid"
)

type stubStep struct {
	name string
	run  func(ctx context.Context, pc *Context) error
}

func (s *stubStep) Name() string                               { return s.name }
func (s *stubStep) Run(ctx context.Context, pc *Context) error { return s.run(ctx, pc) }

func testQuestion(message string) *entity.Question {
	return &entity.Question{
		Id:             uuid.New(),
		ConversationId: uuid.New(),
		Message:        message,
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestContextRephraseTracking(t *testing.T) {
	pc := NewContext(testQuestion("original question"))

	if pc.QuestionMessage() != "original question" {
		t.Fatalf("QuestionMessage = %q, want original", pc.QuestionMessage())
	}
	if pc.Answer.RephrasedQuestion != nil {
		t.Fatal("RephrasedQuestion should start nil")
	}

	pc.SetQuestionMessage("standalone question")
	if pc.QuestionMessage() != "standalone question" {
		t.Errorf("QuestionMessage = %q after rephrase", pc.QuestionMessage())
	}
	if pc.Answer.RephrasedQuestion == nil || *pc.Answer.RephrasedQuestion != "standalone question" {
		t.Errorf("RephrasedQuestion = %v, want standalone question", pc.Answer.RephrasedQuestion)
	}

	// Setting the original text back clears the rephrasing record.
	pc.SetQuestionMessage("original question")
	if pc.Answer.RephrasedQuestion != nil {
		t.Errorf("RephrasedQuestion = %v after restoring original, want nil", pc.Answer.RephrasedQuestion)
	}
}

func TestContextSearchResultsDeriveSources(t *testing.T) {
	pc := NewContext(testQuestion("q"))

	pc.SetSearchResults([]entity.Passage{
		{Id: "p1", Title: "First", Score: 0.9, WeightedScore: 0.88},
		{Id: "p2", Title: "Second", Score: 0.8, WeightedScore: 0.8},
	})

	if len(pc.Answer.Sources) != 2 {
		t.Fatalf("Sources = %d, want 2", len(pc.Answer.Sources))
	}
	for i, src := range pc.Answer.Sources {
		if src.Relevancy != i {
			t.Errorf("Sources[%d].Relevancy = %d, want %d", i, src.Relevancy, i)
		}
		if src.Used {
			t.Errorf("Sources[%d].Used should start false", i)
		}
	}
	if pc.Answer.Sources[0].PassageId != "p1" || pc.Answer.Sources[1].PassageId != "p2" {
		t.Errorf("source order does not follow passage order: %+v", pc.Answer.Sources)
	}
}

func TestRunnerHaltStopsChain(t *testing.T) {
	var thirdRan bool
	runner := NewRunner(discardLogger(),
		&stubStep{name: "first", run: func(_ context.Context, _ *Context) error { return nil }},
		&stubStep{name: "second", run: func(_ context.Context, pc *Context) error {
			return pc.Halt(entity.AnswerStatusBanned, "we cannot help with that")
		}},
		&stubStep{name: "third", run: func(_ context.Context, _ *Context) error {
			thirdRan = true
			return nil
		}},
	)

	answer, err := runner.Run(context.Background(), testQuestion("q"))
	if err != nil {
		t.Fatalf("Run returned error on halt: %v", err)
	}
	if thirdRan {
		t.Error("step after the halting one still ran")
	}
	if answer.Status != entity.AnswerStatusBanned {
		t.Errorf("Status = %s, want banned", answer.Status)
	}
	if answer.Message != "we cannot help with that" {
		t.Errorf("Message = %q", answer.Message)
	}
}

func TestRunnerPropagatesStepErrors(t *testing.T) {
	boom := errors.New("provider exploded")
	runner := NewRunner(discardLogger(),
		&stubStep{name: "broken", run: func(_ context.Context, _ *Context) error { return boom }},
	)

	answer, err := runner.Run(context.Background(), testQuestion("q"))
	if answer != nil {
		t.Error("answer should be nil when a step errors")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped original", err)
	}
}

func TestRunnerCompletesAllSteps(t *testing.T) {
	order := []string{}
	mk := func(name string) Step {
		return &stubStep{name: name, run: func(_ context.Context, pc *Context) error {
			order = append(order, name)
			if name == "composer" {
				pc.Answer.Status = entity.AnswerStatusAnswered
				pc.Answer.Message = "here you go"
			}
			return nil
		}}
	}
	runner := NewRunner(discardLogger(), mk("guard"), mk("composer"), mk("post"))

	answer, err := runner.Run(context.Background(), testQuestion("q"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("ran %d steps, want 3 (order: %v)", len(order), order)
	}
	if answer.Status != entity.AnswerStatusAnswered {
		t.Errorf("Status = %s, want answered", answer.Status)
	}
}
