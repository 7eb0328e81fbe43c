package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/llm"
	"qna-chat-be/pkg/pipeline"

	"github.com/kaptinlin/jsonschema"
)

// StepName is the metrics / llm_responses namespace of the router.
const StepName = "question_routing"

// confidenceField is the shared tool parameter every label carries.
const confidenceField = "confidence_score"

// LabelConfig is one entry of the routing taxonomy: the classification tool
// the model may select, the terminal status a non-genuine selection maps to,
// and (through the canned registry) its pool of canned responses.
type LabelConfig struct {
	Label       string
	Description string
	// Parameters is the JSON-schema properties object for the label's
	// tool arguments, without the shared confidence field.
	Parameters map[string]interface{}
	Status     entity.AnswerStatus
}

// Taxonomy is the configured set of routing labels.
type Taxonomy struct {
	GenuineLabel string
	Labels       []LabelConfig
}

func (t Taxonomy) find(label string) (LabelConfig, bool) {
	for _, l := range t.Labels {
		if l.Label == label {
			return l, true
		}
	}
	return LabelConfig{}, false
}

const systemPrompt = `You classify user questions for a public Q&A assistant.
Select exactly one of the provided classification tools, the one matching the
user's intent, and fill in its arguments. Always include your confidence.`

// Step classifies the (possibly rephrased) question into a routing label via
// a tool-call invocation against the configured taxonomy.
type Step struct {
	client   llm.Client
	model    string
	taxonomy Taxonomy
	registry *canned.Registry
	schemas  map[string]*jsonschema.Schema
	logger   *log.Logger
}

var _ pipeline.Step = &Step{}

// NewStep compiles the taxonomy's argument schemas up front; a schema that
// does not compile is a configuration defect and fails construction.
func NewStep(client llm.Client, model string, taxonomy Taxonomy, registry *canned.Registry, logger *log.Logger) (*Step, error) {
	compiler := jsonschema.NewCompiler()
	schemas := make(map[string]*jsonschema.Schema, len(taxonomy.Labels))
	for _, label := range taxonomy.Labels {
		raw, err := json.Marshal(toolParameters(label))
		if err != nil {
			return nil, fmt.Errorf("marshal schema for label %s: %w", label.Label, err)
		}
		schema, err := compiler.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile schema for label %s: %w", label.Label, err)
		}
		schemas[label.Label] = schema
	}
	return &Step{
		client:   client,
		model:    model,
		taxonomy: taxonomy,
		registry: registry,
		schemas:  schemas,
		logger:   logger,
	}, nil
}

func (s *Step) Name() string { return StepName }

func (s *Step) Run(ctx context.Context, pc *pipeline.Context) error {
	tools := make([]llm.Tool, 0, len(s.taxonomy.Labels))
	for _, label := range s.taxonomy.Labels {
		tools = append(tools, llm.Tool{
			Name:        label.Label,
			Description: label.Description,
			Parameters:  toolParameters(label),
		})
	}

	start := time.Now()
	resp, err := s.client.Chat(ctx, &llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: pc.QuestionMessage()}},
		Tools:       tools,
		Model:       s.model,
		Temperature: 0.0,
	})
	if err != nil {
		var respErr *llm.ResponseError
		if errors.As(err, &respErr) && respErr.Response != nil {
			s.record(pc, respErr.Response, start)
		}
		s.logger.Printf("[ROUTER] classification call failed: %v", err)
		return pc.Halt(entity.AnswerStatusErrorQuestionRouting, s.registry.Fixed(canned.KeyUnsuccessfulRequest))
	}

	s.record(pc, resp, start)

	if resp.ToolCall == nil {
		s.logger.Printf("[ROUTER] no tool selected, stop reason: %s", resp.StopReason)
		return pc.Halt(entity.AnswerStatusErrorQuestionRouting, s.registry.Fixed(canned.KeyUnsuccessfulRequest))
	}

	label, ok := s.taxonomy.find(resp.ToolCall.Name)
	if !ok {
		// Taxonomy drift between prompt and configuration. A defect, not
		// a runtime outcome: propagate instead of aborting cleanly.
		return fmt.Errorf("routing label %q is not in the configured taxonomy", resp.ToolCall.Name)
	}

	confidence, err := s.parseArguments(label.Label, resp.ToolCall.Arguments)
	if err != nil {
		s.logger.Printf("[ROUTER] invalid tool arguments for %s: %v", label.Label, err)
		return pc.Halt(entity.AnswerStatusErrorQuestionRouting, s.registry.Fixed(canned.KeyUnsuccessfulRequest))
	}

	routed := label.Label
	pc.Answer.QuestionRoutingLabel = &routed

	if label.Label == s.taxonomy.GenuineLabel {
		pc.Answer.QuestionRoutingConfidenceScore = nil
		s.logger.Printf("[ROUTER] genuine content request (continuing)")
		return nil
	}

	pc.Answer.QuestionRoutingConfidenceScore = &confidence
	s.logger.Printf("[ROUTER] label %s (confidence %.2f), stopping", label.Label, confidence)
	return pc.Halt(label.Status, s.registry.ForLabel(label.Label))
}

// parseArguments validates the tool-call arguments against the label's
// schema and extracts the shared confidence score.
func (s *Step) parseArguments(label string, raw json.RawMessage) (float64, error) {
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	result := s.schemas[label].Validate(args)
	if !result.Valid {
		return 0, fmt.Errorf("arguments failed schema validation: %v", result.Errors)
	}

	confidence, _ := args[confidenceField].(float64)
	return confidence, nil
}

func (s *Step) record(pc *pipeline.Context, resp *llm.Response, start time.Time) {
	pc.Answer.AssignLLMResponse(StepName, resp.Raw)
	pc.Answer.AssignMetrics(StepName, entity.StepMetrics{
		DurationMs:       time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CachedTokens:     resp.Usage.CachedTokens,
		Model:            resp.Model,
	})
}

// toolParameters merges the label's own parameter schema with the shared
// confidence-score field.
func toolParameters(label LabelConfig) map[string]interface{} {
	properties := map[string]interface{}{
		confidenceField: map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"maximum":     1,
			"description": "How confident the classification is, between 0 and 1.",
		},
	}
	for name, schema := range label.Parameters {
		properties[name] = schema
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   []string{confidenceField},
	}
}
