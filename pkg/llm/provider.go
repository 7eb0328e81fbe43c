package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Tool describes one callable tool offered to the model. Parameters is a
// JSON-schema object describing the tool's arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's selection of a tool plus its raw JSON arguments.
// Arguments are kept raw so callers can schema-validate them before parsing.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Usage carries the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	CachedTokens     int
}

// Request is a provider-agnostic chat-completion request.
type Request struct {
	System      string
	Messages    []Message
	Tools       []Tool
	Model       string // Override default model
	Temperature float64
	MaxTokens   int
}

// Response is the provider-agnostic result of a chat call. Raw holds the
// untouched provider payload for audit purposes.
type Response struct {
	Text       string
	ToolCall   *ToolCall
	Usage      Usage
	Model      string
	StopReason string
	Raw        json.RawMessage
}

// Client defines the contract for any LLM backend
type Client interface {
	// Chat sends the request to the model and returns the response.
	// Failures come back as the typed errors in errors.go so callers can
	// map rate limits, context overflow and malformed output separately.
	Chat(ctx context.Context, req *Request) (*Response, error)
}
