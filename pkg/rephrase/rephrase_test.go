package rephrase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"

	"github.com/google/uuid"
)

type stubHistory struct {
	entries []HistoryEntry
	err     error
}

func (h *stubHistory) RecentHistory(_ context.Context, _ *entity.Question, _ int) ([]HistoryEntry, error) {
	return h.entries, h.err
}

type stubRephraser struct {
	out     string
	err     error
	called  bool
	history []HistoryEntry
}

func (r *stubRephraser) Rephrase(_ context.Context, _ string, history []HistoryEntry) (string, *llm.Response, error) {
	r.called = true
	r.history = history
	if r.err != nil {
		return "", nil, r.err
	}
	return r.out, &llm.Response{
		Raw:   json.RawMessage(`{"stub":true}`),
		Usage: llm.Usage{PromptTokens: 80, CompletionTokens: 12},
		Model: "test-model",
	}, nil
}

func newTestContext(message string) *pipeline.Context {
	return pipeline.NewContext(&entity.Question{
		Id:             uuid.New(),
		ConversationId: uuid.New(),
		Message:        message,
	})
}

func newStepForTest(history HistoryProvider, rephraser Rephraser) *Step {
	excluded := []entity.AnswerStatus{
		entity.AnswerStatusPending,
		entity.AnswerStatusGuardrailsJailbreak,
		entity.AnswerStatusErrorRequest,
	}
	return NewStep(history, rephraser, 3, excluded, log.New(io.Discard, "", 0))
}

func TestRunFirstTurnIsANoOp(t *testing.T) {
	rephraser := &stubRephraser{out: "should not be used"}
	step := newStepForTest(&stubHistory{}, rephraser)
	pc := newTestContext("what is the pricing?")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rephraser.called {
		t.Error("rephraser invoked without history")
	}
	if pc.QuestionMessage() != "what is the pricing?" {
		t.Errorf("question changed: %q", pc.QuestionMessage())
	}
}

func TestRunExcludedStatusesAreFilteredOut(t *testing.T) {
	history := &stubHistory{entries: []HistoryEntry{
		{Question: "q1", Answer: "refused", Status: entity.AnswerStatusGuardrailsJailbreak},
		{Question: "q2", Answer: "failed", Status: entity.AnswerStatusErrorRequest},
	}}
	rephraser := &stubRephraser{out: "should not be used"}
	step := newStepForTest(history, rephraser)
	pc := newTestContext("and what about that?")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rephraser.called {
		t.Error("rephraser invoked with only excluded turns in history")
	}
}

func TestRunRephrasesFollowUp(t *testing.T) {
	history := &stubHistory{entries: []HistoryEntry{
		{Question: "how do I reset my password?", Answer: "Use the forgot password link.", Status: entity.AnswerStatusAnswered},
		{Question: "old refusal", Answer: "no", Status: entity.AnswerStatusGuardrailsJailbreak},
	}}
	rephraser := &stubRephraser{out: "how do I reset my password without email access?"}
	step := newStepForTest(history, rephraser)
	pc := newTestContext("and without email access?")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pc.QuestionMessage() != "how do I reset my password without email access?" {
		t.Errorf("QuestionMessage = %q", pc.QuestionMessage())
	}
	if pc.Answer.RephrasedQuestion == nil {
		t.Fatal("RephrasedQuestion not recorded")
	}
	if len(rephraser.history) != 1 {
		t.Errorf("rephraser saw %d turns, want 1 usable", len(rephraser.history))
	}
	if _, ok := pc.Answer.Metrics[StepName]; !ok {
		t.Error("rephrase call cost was not recorded")
	}
}

func TestRunProviderFailureKeepsOriginalQuestion(t *testing.T) {
	history := &stubHistory{entries: []HistoryEntry{
		{Question: "q", Answer: "a", Status: entity.AnswerStatusAnswered},
	}}
	rephraser := &stubRephraser{err: errors.New("provider down")}
	step := newStepForTest(history, rephraser)
	pc := newTestContext("a follow-up")

	// Best effort: retrieval still works on the original question.
	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pc.Aborted() {
		t.Error("rephrase failure aborted the run")
	}
	if pc.QuestionMessage() != "a follow-up" {
		t.Errorf("QuestionMessage = %q, want original", pc.QuestionMessage())
	}
}

func TestRunHistoryErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	step := newStepForTest(&stubHistory{err: boom}, &stubRephraser{})
	pc := newTestContext("a follow-up")

	if err := step.Run(context.Background(), pc); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the datastore error", err)
	}
}
