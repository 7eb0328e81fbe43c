package guardrail

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"qna-chat-be/pkg/llm"
)

type stubClient struct {
	resp *llm.Response
	err  error
}

func (c *stubClient) Chat(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	return c.resp, c.err
}

func newLLMCheckerForTest(resp *llm.Response, err error) *LLMChecker {
	return NewLLMChecker(&stubClient{resp: resp, err: err}, "test-model", log.New(io.Discard, "", 0))
}

func TestLLMCheckerParsesVerdict(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantStatus   VerdictStatus
		wantFailures int
	}{
		{
			name:       "clean pass",
			text:       `{"pass": true, "failures": []}`,
			wantStatus: VerdictPass,
		},
		{
			name:         "fail with tags",
			text:         `{"pass": false, "failures": ["prompt_injection", "role_play"]}`,
			wantStatus:   VerdictFail,
			wantFailures: 2,
		},
		{
			name:       "fenced output",
			text:       "```json\n{\"pass\": true, \"failures\": []}\n```",
			wantStatus: VerdictPass,
		},
		{
			name:       "prose around the object",
			text:       "Here is my verdict: {\"pass\": true, \"failures\": []} Hope that helps!",
			wantStatus: VerdictPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newLLMCheckerForTest(&llm.Response{Text: tt.text}, nil)

			verdict, err := checker.Check(context.Background(), "some text", Policy{Name: "test"})
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if verdict.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", verdict.Status, tt.wantStatus)
			}
			if len(verdict.Failures) != tt.wantFailures {
				t.Errorf("Failures = %v, want %d entries", verdict.Failures, tt.wantFailures)
			}
		})
	}
}

func TestLLMCheckerMalformedOutput(t *testing.T) {
	resp := &llm.Response{Text: "I cannot classify this.", Usage: llm.Usage{PromptTokens: 50}}
	checker := newLLMCheckerForTest(resp, nil)

	_, err := checker.Check(context.Background(), "some text", Policy{Name: "test"})
	var respErr *llm.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("err = %v, want *llm.ResponseError", err)
	}
	if respErr.Response != resp {
		t.Error("partial response not attached to the error")
	}
}

func TestLLMCheckerPropagatesClientError(t *testing.T) {
	boom := &llm.RequestError{Provider: "openai", StatusCode: 500}
	checker := newLLMCheckerForTest(nil, boom)

	_, err := checker.Check(context.Background(), "some text", Policy{Name: "test"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the client error", err)
	}
}
