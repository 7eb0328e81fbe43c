package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qna-chat-be/pkg/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
)

type ClaudeProvider struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure ClaudeProvider implements Client
var _ llm.Client = &ClaudeProvider{}

func NewClaudeProvider(apiKey, modelName, baseURL string) *ClaudeProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ClaudeProvider{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type messagesRequest struct {
	Model       string          `json:"model"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Tools       []claudeTool    `json:"tools,omitempty"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type messagesResponse struct {
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	Usage struct {
		InputTokens         int `json:"input_tokens"`
		OutputTokens        int `json:"output_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Interface Implementation ---

func (c *ClaudeProvider) Chat(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	model := c.ModelName
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]claudeMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, claudeMessage{Role: role, Content: msg.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048 // the messages API requires an explicit cap
	}

	payload := messagesRequest{
		Model:       model,
		System:      req.System,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
	for _, tool := range req.Tools {
		payload.Tools = append(payload.Tools, claudeTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Parameters,
		})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.BaseURL + "/messages"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, &llm.RequestError{Provider: "claude", Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.RequestError{Provider: "claude", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(resp.StatusCode, bodyBytes, model)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, &llm.ResponseError{
			Provider: "claude",
			Response: &llm.Response{Raw: bodyBytes},
			Reason:   fmt.Sprintf("unmarshal response: %v", err),
		}
	}

	result := &llm.Response{
		Usage: llm.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			CachedTokens:     parsed.Usage.CacheReadInputTokens,
		},
		Model:      parsed.Model,
		StopReason: parsed.StopReason,
		Raw:        bodyBytes,
	}
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			result.Text += block.Text
		case "tool_use":
			if result.ToolCall == nil {
				result.ToolCall = &llm.ToolCall{Name: block.Name, Arguments: block.Input}
			}
		}
	}
	if result.Text == "" && result.ToolCall == nil {
		return nil, &llm.ResponseError{
			Provider: "claude",
			Response: result,
			Reason:   "no text or tool_use content in response",
		}
	}

	return result, nil
}

func (c *ClaudeProvider) mapError(status int, body []byte, model string) error {
	if status == http.StatusTooManyRequests {
		return &llm.RateLimitError{Provider: "claude"}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if strings.Contains(errResp.Error.Message, "prompt is too long") {
			return &llm.ContextLengthError{Provider: "claude", Model: model}
		}
	}

	return &llm.RequestError{Provider: "claude", StatusCode: status, Body: string(body)}
}
