package rephrase

import (
	"context"
	"fmt"
	"strings"

	"qna-chat-be/pkg/llm"
)

const rephraseSystemPrompt = `You rewrite the user's latest question so it can be understood
without the conversation. Resolve pronouns and implicit references against
the prior turns. Keep the user's language and intent. Output only the
rewritten question, nothing else.`

// New selects the provider-specific rephraser for a configured key. An
// unknown key is a configuration defect and fails construction.
func New(providerType string, client llm.Client, model string) (Rephraser, error) {
	switch providerType {
	case "openai":
		return &OpenAIRephraser{client: client, model: model}, nil
	case "claude":
		return &ClaudeRephraser{client: client, model: model}, nil
	default:
		return nil, fmt.Errorf("unsupported rephrasing provider: %s", providerType)
	}
}

// OpenAIRephraser lays the history out as alternating chat turns.
type OpenAIRephraser struct {
	client llm.Client
	model  string
}

var _ Rephraser = &OpenAIRephraser{}

func (r *OpenAIRephraser) Rephrase(ctx context.Context, question string, history []HistoryEntry) (string, *llm.Response, error) {
	messages := make([]llm.Message, 0, len(history)*2+1)
	// history arrives most recent first; replay it chronologically
	for i := len(history) - 1; i >= 0; i-- {
		messages = append(messages,
			llm.Message{Role: "user", Content: history[i].Question},
			llm.Message{Role: "assistant", Content: history[i].Answer},
		)
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Rewrite this follow-up question as a standalone question: %q", question),
	})

	resp, err := r.client.Chat(ctx, &llm.Request{
		System:      rephraseSystemPrompt,
		Messages:    messages,
		Model:       r.model,
		Temperature: 0.0,
	})
	if err != nil {
		return "", nil, err
	}
	return resp.Text, resp, nil
}

// ClaudeRephraser embeds the history as a transcript in a single user turn,
// with the instructions in the system parameter.
type ClaudeRephraser struct {
	client llm.Client
	model  string
}

var _ Rephraser = &ClaudeRephraser{}

func (r *ClaudeRephraser) Rephrase(ctx context.Context, question string, history []HistoryEntry) (string, *llm.Response, error) {
	var transcript strings.Builder
	for i := len(history) - 1; i >= 0; i-- {
		transcript.WriteString("User: " + history[i].Question + "\n")
		transcript.WriteString("Assistant: " + history[i].Answer + "\n")
	}

	prompt := fmt.Sprintf("<conversation>\n%s</conversation>\n\nRewrite this follow-up question as a standalone question: %q", transcript.String(), question)

	resp, err := r.client.Chat(ctx, &llm.Request{
		System:      rephraseSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Model:       r.model,
		Temperature: 0.0,
	})
	if err != nil {
		return "", nil, err
	}
	return resp.Text, resp, nil
}
