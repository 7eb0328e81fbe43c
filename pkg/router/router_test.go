package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"

	"github.com/google/uuid"
)

type stubClient struct {
	resp *llm.Response
	err  error
}

func (c *stubClient) Chat(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	return c.resp, c.err
}

func testTaxonomy() Taxonomy {
	return Taxonomy{
		GenuineLabel: "genuine_request",
		Labels: []LabelConfig{
			{
				Label:       "genuine_request",
				Description: "A real question about the product documentation.",
			},
			{
				Label:       "greetings",
				Description: "A greeting or small talk.",
				Status:      entity.AnswerStatusAnswered,
			},
			{
				Label:       "needs_clarification",
				Description: "Too vague to answer.",
				Parameters: map[string]interface{}{
					"missing_detail": map[string]interface{}{
						"type":        "string",
						"description": "What detail is missing.",
					},
				},
				Status: entity.AnswerStatusClarification,
			},
		},
	}
}

func testRegistry() *canned.Registry {
	return canned.NewRegistry(
		map[string]string{
			canned.KeyUnsuccessfulRequest: "Something went wrong, please try again.",
		},
		map[string][]string{
			"greetings":           {"Hello! Ask me anything about the docs."},
			"needs_clarification": {"Could you add a bit more detail?"},
		},
		7,
	)
}

func newStepForTest(t *testing.T, client llm.Client) *Step {
	t.Helper()
	step, err := NewStep(client, "test-model", testTaxonomy(), testRegistry(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewStep: %v", err)
	}
	return step
}

func newTestContext(message string) *pipeline.Context {
	return pipeline.NewContext(&entity.Question{
		Id:             uuid.New(),
		ConversationId: uuid.New(),
		Message:        message,
	})
}

func toolResponse(name, arguments string) *llm.Response {
	return &llm.Response{
		ToolCall: &llm.ToolCall{Name: name, Arguments: json.RawMessage(arguments)},
		Raw:      json.RawMessage(`{"stub":true}`),
		Usage:    llm.Usage{PromptTokens: 200, CompletionTokens: 15},
		Model:    "test-model",
	}
}

func TestRunGenuineRequestContinues(t *testing.T) {
	client := &stubClient{resp: toolResponse("genuine_request", `{"confidence_score": 0.97}`)}
	step := newStepForTest(t, client)
	pc := newTestContext("how do I rotate my api key")

	if err := step.Run(context.Background(), pc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pc.Aborted() {
		t.Error("genuine request aborted the run")
	}
	if pc.Answer.QuestionRoutingLabel == nil || *pc.Answer.QuestionRoutingLabel != "genuine_request" {
		t.Errorf("QuestionRoutingLabel = %v", pc.Answer.QuestionRoutingLabel)
	}
	if pc.Answer.QuestionRoutingConfidenceScore != nil {
		t.Error("confidence score should stay nil for genuine requests")
	}
	if _, ok := pc.Answer.Metrics[StepName]; !ok {
		t.Error("router call cost was not recorded")
	}
}

func TestRunNonGenuineLabelHalts(t *testing.T) {
	client := &stubClient{resp: toolResponse("greetings", `{"confidence_score": 0.88}`)}
	step := newStepForTest(t, client)
	pc := newTestContext("hi there!")

	err := step.Run(context.Background(), pc)
	if !errors.Is(err, pipeline.ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted", err)
	}
	if pc.Answer.Status != entity.AnswerStatusAnswered {
		t.Errorf("Status = %s, want answered (greetings get a friendly reply)", pc.Answer.Status)
	}
	if pc.Answer.Message != "Hello! Ask me anything about the docs." {
		t.Errorf("Message = %q", pc.Answer.Message)
	}
	if pc.Answer.QuestionRoutingConfidenceScore == nil || *pc.Answer.QuestionRoutingConfidenceScore != 0.88 {
		t.Errorf("ConfidenceScore = %v, want 0.88", pc.Answer.QuestionRoutingConfidenceScore)
	}
}

func TestRunClarificationLabel(t *testing.T) {
	client := &stubClient{resp: toolResponse("needs_clarification",
		`{"confidence_score": 0.75, "missing_detail": "which environment"}`)}
	step := newStepForTest(t, client)
	pc := newTestContext("it does not work")

	if err := step.Run(context.Background(), pc); !errors.Is(err, pipeline.ErrHalted) {
		t.Fatalf("want ErrHalted, got %v", err)
	}
	if pc.Answer.Status != entity.AnswerStatusClarification {
		t.Errorf("Status = %s, want clarification", pc.Answer.Status)
	}
}

func TestRunUnknownLabelIsADefect(t *testing.T) {
	client := &stubClient{resp: toolResponse("made_up_label", `{"confidence_score": 0.5}`)}
	step := newStepForTest(t, client)
	pc := newTestContext("a question")

	err := step.Run(context.Background(), pc)
	if err == nil || errors.Is(err, pipeline.ErrHalted) {
		t.Fatalf("err = %v, want a propagated defect", err)
	}
	if !strings.Contains(err.Error(), "made_up_label") {
		t.Errorf("error should name the unknown label: %v", err)
	}
}

func TestRunInvalidArgumentsHalt(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
	}{
		{name: "missing confidence", arguments: `{}`},
		{name: "confidence out of range", arguments: `{"confidence_score": 4.2}`},
		{name: "not json", arguments: `confidence: high`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{resp: toolResponse("greetings", tt.arguments)}
			step := newStepForTest(t, client)
			pc := newTestContext("hi")

			if err := step.Run(context.Background(), pc); !errors.Is(err, pipeline.ErrHalted) {
				t.Fatalf("err = %v, want ErrHalted", err)
			}
			if pc.Answer.Status != entity.AnswerStatusErrorQuestionRouting {
				t.Errorf("Status = %s, want error_question_routing", pc.Answer.Status)
			}
		})
	}
}

func TestRunNoToolSelectedHalts(t *testing.T) {
	client := &stubClient{resp: &llm.Response{
		Text:       "I think this is a greeting.",
		Raw:        json.RawMessage(`{}`),
		StopReason: "stop",
	}}
	step := newStepForTest(t, client)
	pc := newTestContext("hi")

	if err := step.Run(context.Background(), pc); !errors.Is(err, pipeline.ErrHalted) {
		t.Fatal("want ErrHalted when the model answers in prose")
	}
	if pc.Answer.Status != entity.AnswerStatusErrorQuestionRouting {
		t.Errorf("Status = %s, want error_question_routing", pc.Answer.Status)
	}
}

func TestRunProviderFailureHalts(t *testing.T) {
	client := &stubClient{err: &llm.RequestError{Provider: "openai", StatusCode: 503}}
	step := newStepForTest(t, client)
	pc := newTestContext("a question")

	if err := step.Run(context.Background(), pc); !errors.Is(err, pipeline.ErrHalted) {
		t.Fatal("want ErrHalted on provider failure")
	}
	if pc.Answer.Status != entity.AnswerStatusErrorQuestionRouting {
		t.Errorf("Status = %s, want error_question_routing", pc.Answer.Status)
	}
	if pc.Answer.Message != "Something went wrong, please try again." {
		t.Errorf("Message = %q, want generic canned text", pc.Answer.Message)
	}
}
