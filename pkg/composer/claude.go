package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"
)

const submitAnswerTool = "submit_answer"

// ClaudeStep composes the answer with a Claude model, collecting the
// structured result through a forced tool call instead of free-form JSON.
type ClaudeStep struct {
	core
	client llm.Client
	model  string
}

var _ pipeline.Step = &ClaudeStep{}

func NewClaudeStep(client llm.Client, model string, config Config, registry *canned.Registry, tracker pipeline.ErrorTracker, logger *log.Logger) *ClaudeStep {
	return &ClaudeStep{
		core: core{
			config:   config,
			registry: registry,
			tracker:  tracker,
			logger:   logger,
		},
		client: client,
		model:  model,
	}
}

func (s *ClaudeStep) Name() string { return StepName }

func (s *ClaudeStep) Run(ctx context.Context, pc *pipeline.Context) error {
	messages := make([]llm.Message, 0, len(s.config.Examples)*2+1)
	for _, ex := range s.config.Examples {
		messages = append(messages,
			llm.Message{Role: "user", Content: ex.Question},
			llm.Message{Role: "assistant", Content: ex.Answer},
		)
	}
	messages = append(messages, llm.Message{Role: "user", Content: s.buildUserPrompt(pc)})

	start := time.Now()
	resp, err := s.client.Chat(ctx, &llm.Request{
		System:      s.config.SystemTemplate + "\n\nSubmit your result through the submit_answer tool.",
		Messages:    messages,
		Tools:       []llm.Tool{answerTool()},
		Model:       s.model,
		Temperature: 0.2,
	})
	if err != nil {
		return s.mapProviderError(ctx, pc, err, start)
	}

	if resp.ToolCall == nil || resp.ToolCall.Name != submitAnswerTool {
		return s.invalidResult(pc, resp, start, "model did not call submit_answer")
	}

	var parsed structuredResult
	if err := json.Unmarshal(resp.ToolCall.Arguments, &parsed); err != nil {
		return s.invalidResult(pc, resp, start, fmt.Sprintf("tool arguments are not valid JSON: %v", err))
	}

	return s.apply(pc, resp, &parsed, start)
}

func answerTool() llm.Tool {
	return llm.Tool{
		Name:        submitAnswerTool,
		Description: "Submit the composed answer together with its citation and completeness signals.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"answer":         map[string]interface{}{"type": "string"},
				"answered":       map[string]interface{}{"type": "boolean"},
				"call_to_action": map[string]interface{}{"type": "string"},
				"sources_used": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
				"completeness": map[string]interface{}{
					"type": "string",
					"enum": []string{"complete", "partial", "none"},
				},
			},
			"required": []string{"answer", "answered"},
		},
	}
}
