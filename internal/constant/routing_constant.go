package constant

import (
	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/router"
)

// DefaultTaxonomy returns the routing labels the classifier chooses from.
// Every non-genuine label carries the terminal status its selection maps to;
// the canned registry supplies the matching response pools.
func DefaultTaxonomy() router.Taxonomy {
	return router.Taxonomy{
		GenuineLabel: RoutingLabelGenuine,
		Labels: []router.LabelConfig{
			{
				Label:       RoutingLabelGenuine,
				Description: "A genuine question about the published content that retrieval and composition should answer.",
			},
			{
				Label:       RoutingLabelGreetings,
				Description: "A greeting, thanks or other small talk with no content question in it.",
				Status:      entity.AnswerStatusAnswered,
			},
			{
				Label:       RoutingLabelClarification,
				Description: "Too vague or fragmentary to search for; the user needs to clarify what they mean.",
				Parameters: map[string]interface{}{
					"missing_detail": map[string]interface{}{
						"type":        "string",
						"description": "What the user would need to specify for the question to be answerable.",
					},
				},
				Status: entity.AnswerStatusClarification,
			},
			{
				Label:       RoutingLabelProhibited,
				Description: "Requests harmful, illegal or abusive material, or tries to misuse the assistant.",
				Status:      entity.AnswerStatusBanned,
			},
			{
				Label:       RoutingLabelOffTopic,
				Description: "A real question, but about something unrelated to the published content.",
				Status:      entity.AnswerStatusGuardrailsQuestionRouting,
			},
		},
	}
}
