package factory

import (
	"fmt"

	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/llm/claude"
	"qna-chat-be/pkg/llm/ollama"
	"qna-chat-be/pkg/llm/openai"
)

// Options carries the per-provider credentials and endpoints.
type Options struct {
	OpenAIAPIKey  string
	ClaudeAPIKey  string
	OllamaBaseURL string
}

// NewClient builds the chat client for a configured provider key. An unknown
// key is a configuration defect and fails construction.
func NewClient(providerType, modelName string, opts Options) (llm.Client, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(opts.OpenAIAPIKey, modelName, ""), nil
	case "claude":
		return claude.NewClaudeProvider(opts.ClaudeAPIKey, modelName, ""), nil
	case "ollama":
		return ollama.NewOllamaProvider(opts.OllamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
