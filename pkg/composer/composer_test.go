package composer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubClient struct {
	resp *llm.Response
	err  error
	req  *llm.Request
}

func (c *stubClient) Chat(_ context.Context, req *llm.Request) (*llm.Response, error) {
	c.req = req
	return c.resp, c.err
}

type countingTracker struct {
	notified int
}

func (t *countingTracker) Notify(_ context.Context, _ error) { t.notified++ }

func newTestRegistry() *canned.Registry {
	return canned.NewRegistry(map[string]string{
		canned.KeyLLMDeclined:         "Our docs do not seem to cover that.",
		canned.KeyContextLength:       "That conversation got too long, please start a new one.",
		canned.KeyUnsuccessfulRequest: "Something went wrong, please try again.",
	}, nil, 1)
}

func newTestContext() *pipeline.Context {
	pc := pipeline.NewContext(&entity.Question{
		Id:             uuid.New(),
		ConversationId: uuid.New(),
		Message:        "how do I reset my password?",
	})
	pc.SetSearchResults([]entity.Passage{
		{Id: "p1", Title: "Password reset", Content: "Use the forgot password link."},
		{Id: "p2", Title: "Account recovery", Content: "Contact support for locked accounts."},
	})
	return pc
}

func newOpenAIStepForTest(client llm.Client, tracker pipeline.ErrorTracker) *OpenAIStep {
	config := Config{
		SystemTemplate: "You answer questions from the passages only.",
		Examples: []Example{
			{Question: "example question", Answer: `{"answer":"example","answered":true}`},
		},
	}
	return NewOpenAIStep(client, "test-model", config, newTestRegistry(), tracker, log.New(io.Discard, "", 0))
}

func structuredResponse(text string) *llm.Response {
	return &llm.Response{
		Text:  text,
		Raw:   json.RawMessage(`{"stub":true}`),
		Usage: llm.Usage{PromptTokens: 900, CompletionTokens: 130},
		Model: "test-model",
	}
}

func TestRunComposesAnswer(t *testing.T) {
	client := &stubClient{resp: structuredResponse(`{
		"answer": "Use the forgot password link on the login page.",
		"answered": true,
		"call_to_action": "See the account recovery guide for locked accounts.",
		"sources_used": ["p1"],
		"completeness": "complete"
	}`)}
	step := newOpenAIStepForTest(client, &countingTracker{})
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.NoError(t, err)
	assert.Equal(t, entity.AnswerStatusAnswered, pc.Answer.Status)
	assert.Equal(t,
		"Use the forgot password link on the login page.\n\nSee the account recovery guide for locked accounts.",
		pc.Answer.Message)

	// Only the cited passage is flagged.
	assert.True(t, pc.Answer.Sources[0].Used)
	assert.False(t, pc.Answer.Sources[1].Used)

	metrics, ok := pc.Answer.Metrics[StepName]
	assert.True(t, ok)
	assert.Equal(t, 900, metrics.PromptTokens)

	// Few-shot examples precede the real question in the request.
	assert.Len(t, client.req.Messages, 3)
	assert.Contains(t, client.req.Messages[2].Content, "PASSAGE p1")
	assert.Contains(t, client.req.Messages[2].Content, "how do I reset my password?")
}

func TestRunModelDeclines(t *testing.T) {
	client := &stubClient{resp: structuredResponse(`{
		"answer": "",
		"answered": false,
		"call_to_action": "",
		"sources_used": [],
		"completeness": "none"
	}`)}
	step := newOpenAIStepForTest(client, &countingTracker{})
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.ErrorIs(t, err, pipeline.ErrHalted)
	assert.Equal(t, entity.AnswerStatusUnanswerableLLMDeclined, pc.Answer.Status)
	assert.Equal(t, "Our docs do not seem to cover that.", pc.Answer.Message)
}

func TestRunInvalidStructuredOutput(t *testing.T) {
	client := &stubClient{resp: structuredResponse("Sure! The answer is to click forgot password.")}
	step := newOpenAIStepForTest(client, &countingTracker{})
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.ErrorIs(t, err, pipeline.ErrHalted)
	assert.Equal(t, entity.AnswerStatusErrorInvalidLLMResponse, pc.Answer.Status)

	// The raw payload and parse error are kept as diagnostics.
	raw, ok := pc.Answer.LLMResponses[StepName]
	assert.True(t, ok)
	var diagnostic map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &diagnostic))
	assert.Contains(t, diagnostic, "parse_error")
}

func TestRunContextLengthExceeded(t *testing.T) {
	tracker := &countingTracker{}
	client := &stubClient{err: &llm.ContextLengthError{Provider: "openai", Model: "test-model"}}
	step := newOpenAIStepForTest(client, tracker)
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.ErrorIs(t, err, pipeline.ErrHalted)
	assert.Equal(t, entity.AnswerStatusErrorContextLength, pc.Answer.Status)
	assert.Equal(t, "That conversation got too long, please start a new one.", pc.Answer.Message)

	// Data-shape issue, not a provider incident.
	assert.Equal(t, 0, tracker.notified)
}

func TestRunProviderFailureNotifiesTracker(t *testing.T) {
	tracker := &countingTracker{}
	client := &stubClient{err: &llm.RequestError{Provider: "openai", StatusCode: 500}}
	step := newOpenAIStepForTest(client, tracker)
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.ErrorIs(t, err, pipeline.ErrHalted)
	assert.Equal(t, entity.AnswerStatusErrorRequest, pc.Answer.Status)
	assert.Equal(t, 1, tracker.notified)
}

func TestRunMalformedResponseKeepsPartialUsage(t *testing.T) {
	client := &stubClient{err: &llm.ResponseError{
		Provider: "openai",
		Reason:   "empty choices",
		Response: &llm.Response{
			Raw:   json.RawMessage(`{"choices":[]}`),
			Usage: llm.Usage{PromptTokens: 850},
			Model: "test-model",
		},
	}}
	step := newOpenAIStepForTest(client, &countingTracker{})
	pc := newTestContext()

	err := step.Run(context.Background(), pc)
	assert.ErrorIs(t, err, pipeline.ErrHalted)
	assert.Equal(t, entity.AnswerStatusErrorInvalidLLMResponse, pc.Answer.Status)

	metrics, ok := pc.Answer.Metrics[StepName]
	assert.True(t, ok)
	assert.Equal(t, 850, metrics.PromptTokens)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", in: `Here: {"a":1} done.`, want: `{"a":1}`},
		{name: "no object", in: "no json here", want: "no json here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
