package composer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"
)

// StepName is the metrics / llm_responses namespace of the composer.
const StepName = "answer_composition"

// Example is one few-shot pair injected ahead of the real question.
type Example struct {
	Question string
	Answer   string
}

// Config carries the prompt material every composer variant shares.
type Config struct {
	SystemTemplate string
	Examples       []Example
}

// structuredResult is the shape every structured variant asks the model for.
type structuredResult struct {
	Answer       string   `json:"answer"`
	Answered     bool     `json:"answered"`
	CallToAction string   `json:"call_to_action"`
	SourcesUsed  []string `json:"sources_used"`
	Completeness string   `json:"completeness"`
}

// core bundles the behavior shared by all composer variants: prompt
// building, provider-error mapping and result application.
type core struct {
	config   Config
	registry *canned.Registry
	tracker  pipeline.ErrorTracker
	logger   *log.Logger
}

// buildUserPrompt concatenates the retrieved passages (title, heading,
// description, content per passage) with the working question.
func (c *core) buildUserPrompt(pc *pipeline.Context) string {
	var prompt strings.Builder

	prompt.WriteString("<passages>\n")
	for _, p := range pc.SearchResults() {
		prompt.WriteString(fmt.Sprintf("--- PASSAGE %s ---\n", p.Id))
		prompt.WriteString("Title: " + p.Title + "\n")
		if p.HeadingPath != "" {
			prompt.WriteString("Heading: " + p.HeadingPath + "\n")
		}
		if p.Description != "" {
			prompt.WriteString("Description: " + p.Description + "\n")
		}
		prompt.WriteString(p.Content + "\n")
	}
	prompt.WriteString("</passages>\n\n")

	prompt.WriteString("Question: " + pc.QuestionMessage())
	return prompt.String()
}

// mapProviderError converts a provider failure into the matching halt.
// Context overflow gets its own status and message and is treated as a
// recoverable data-shape issue; everything else is reported to the error
// tracker.
func (c *core) mapProviderError(ctx context.Context, pc *pipeline.Context, err error, start time.Time) error {
	var respErr *llm.ResponseError
	if errors.As(err, &respErr) && respErr.Response != nil {
		c.record(pc, respErr.Response, start)
		return pc.Halt(entity.AnswerStatusErrorInvalidLLMResponse, c.registry.Fixed(canned.KeyUnsuccessfulRequest))
	}

	var ctxErr *llm.ContextLengthError
	if errors.As(err, &ctxErr) {
		c.logger.Printf("[COMPOSER] context length exceeded: %v", err)
		return pc.Halt(entity.AnswerStatusErrorContextLength, c.registry.Fixed(canned.KeyContextLength))
	}

	c.logger.Printf("[COMPOSER] provider request failed: %v", err)
	c.tracker.Notify(ctx, err)
	return pc.Halt(entity.AnswerStatusErrorRequest, c.registry.Fixed(canned.KeyUnsuccessfulRequest))
}

// invalidResult halts on schema-invalid or unparsable structured output,
// keeping the raw response and the parse error as diagnostics.
func (c *core) invalidResult(pc *pipeline.Context, resp *llm.Response, start time.Time, reason string) error {
	diagnostic, _ := json.Marshal(map[string]interface{}{
		"raw":         json.RawMessage(resp.Raw),
		"parse_error": reason,
	})
	pc.Answer.AssignLLMResponse(StepName, diagnostic)
	c.assignMetrics(pc, resp, start)

	c.logger.Printf("[COMPOSER] invalid structured output: %s", reason)
	return pc.Halt(entity.AnswerStatusErrorInvalidLLMResponse, c.registry.Fixed(canned.KeyUnsuccessfulRequest))
}

// apply finalizes a successfully parsed composition.
func (c *core) apply(pc *pipeline.Context, resp *llm.Response, parsed *structuredResult, start time.Time) error {
	c.record(pc, resp, start)

	if !parsed.Answered {
		c.logger.Printf("[COMPOSER] model declined to answer")
		return pc.Halt(entity.AnswerStatusUnanswerableLLMDeclined, c.registry.Fixed(canned.KeyLLMDeclined))
	}

	message := strings.TrimSpace(parsed.Answer)
	if cta := strings.TrimSpace(parsed.CallToAction); cta != "" {
		message = message + "\n\n" + cta
	}
	pc.Answer.Message = message
	pc.Answer.MarkSourcesUsed(parsed.SourcesUsed)
	pc.Answer.Status = entity.AnswerStatusAnswered

	c.logger.Printf("[COMPOSER] answered (%d sources cited, completeness: %s)",
		len(parsed.SourcesUsed), parsed.Completeness)
	return nil
}

func (c *core) record(pc *pipeline.Context, resp *llm.Response, start time.Time) {
	pc.Answer.AssignLLMResponse(StepName, resp.Raw)
	c.assignMetrics(pc, resp, start)
}

func (c *core) assignMetrics(pc *pipeline.Context, resp *llm.Response, start time.Time) {
	pc.Answer.AssignMetrics(StepName, entity.StepMetrics{
		DurationMs:       time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CachedTokens:     resp.Usage.CachedTokens,
		Model:            resp.Model,
	})
}

// extractJSON strips markdown fences and prose wrapped around a JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
