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

const openaiJSONInstructions = `Respond with a single JSON object only:
{
  "answer": "the composed answer in the user's language",
  "answered": boolean, true only if the passages actually answer the question,
  "call_to_action": "optional short follow-up suggestion, empty string if none",
  "sources_used": ["passage ids actually cited in the answer"],
  "completeness": "complete" | "partial" | "none"
}
No prose outside the JSON object.`

// OpenAIStep composes the answer with an OpenAI chat model asking for a
// structured JSON object.
type OpenAIStep struct {
	core
	client llm.Client
	model  string
}

var _ pipeline.Step = &OpenAIStep{}

func NewOpenAIStep(client llm.Client, model string, config Config, registry *canned.Registry, tracker pipeline.ErrorTracker, logger *log.Logger) *OpenAIStep {
	return &OpenAIStep{
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

func (s *OpenAIStep) Name() string { return StepName }

func (s *OpenAIStep) Run(ctx context.Context, pc *pipeline.Context) error {
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
		System:      s.config.SystemTemplate + "\n\n" + openaiJSONInstructions,
		Messages:    messages,
		Model:       s.model,
		Temperature: 0.2,
	})
	if err != nil {
		return s.mapProviderError(ctx, pc, err, start)
	}

	var parsed structuredResult
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &parsed); err != nil {
		return s.invalidResult(pc, resp, start, fmt.Sprintf("answer is not valid JSON: %v", err))
	}

	return s.apply(pc, resp, &parsed, start)
}
