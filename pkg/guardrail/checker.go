package guardrail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"qna-chat-be/pkg/llm"
)

// VerdictStatus is the outcome of one guardrail classification.
type VerdictStatus string

const (
	VerdictPass VerdictStatus = "pass"
	VerdictFail VerdictStatus = "fail"
)

// Verdict is a checker's classification of a piece of text against a policy.
// Response is nil for checkers that make no provider call.
type Verdict struct {
	Status   VerdictStatus
	Failures []string
	Response *llm.Response
}

// Policy names the guardrail and carries the rule text the classifier is
// prompted with. Tags lists the violation tags the classifier may report.
type Policy struct {
	Name  string
	Rules string
	Tags  []string
}

// Checker classifies text against a named policy. Implementations return a
// typed *llm.ResponseError (carrying partial output and usage) when the
// provider answered in an unusable shape.
type Checker interface {
	Check(ctx context.Context, text string, policy Policy) (*Verdict, error)
}

const checkerSystemPrompt = `You are a strict content policy classifier.
Evaluate the text in <input> against the policy rules. Respond with JSON only:
{"pass": boolean, "failures": ["tag", ...]}
"failures" lists the violated policy tags in order of severity, empty when the text passes.
Never add prose outside the JSON object.`

// LLMChecker classifies with a chat model at temperature 0.
type LLMChecker struct {
	client llm.Client
	model  string
	logger *log.Logger
}

var _ Checker = &LLMChecker{}

func NewLLMChecker(client llm.Client, model string, logger *log.Logger) *LLMChecker {
	return &LLMChecker{
		client: client,
		model:  model,
		logger: logger,
	}
}

type checkerResult struct {
	Pass     bool     `json:"pass"`
	Failures []string `json:"failures"`
}

func (c *LLMChecker) Check(ctx context.Context, text string, policy Policy) (*Verdict, error) {
	prompt := fmt.Sprintf("POLICY %q:\n%s\n\nKNOWN TAGS: %s\n\n<input>\n%s\n</input>",
		policy.Name, policy.Rules, strings.Join(policy.Tags, ", "), text)

	resp, err := c.client.Chat(ctx, &llm.Request{
		System:      checkerSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Model:       c.model,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, err
	}

	var parsed checkerResult
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &parsed); err != nil {
		return nil, &llm.ResponseError{
			Provider: "guardrail",
			Response: resp,
			Reason:   fmt.Sprintf("classifier output is not valid JSON: %v", err),
		}
	}

	verdict := &Verdict{Status: VerdictPass, Response: resp}
	if !parsed.Pass {
		verdict.Status = VerdictFail
		verdict.Failures = parsed.Failures
	}

	c.logger.Printf("[GUARDRAIL] policy %s: %s (failures: %v)", policy.Name, verdict.Status, verdict.Failures)
	return verdict, nil
}

// extractJSON strips markdown fences and surrounding prose that smaller
// models sometimes wrap around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
