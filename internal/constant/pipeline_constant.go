package constant

import (
	"qna-chat-be/internal/entity"
	"qna-chat-be/pkg/canned"
)

// Routing labels of the default taxonomy.
const (
	RoutingLabelGenuine       = "genuine_request"
	RoutingLabelGreetings     = "greetings"
	RoutingLabelClarification = "needs_clarification"
	RoutingLabelProhibited    = "prohibited"
	RoutingLabelOffTopic      = "off_topic"
)

// ExcludedRephraseStatuses lists the answer statuses that carry no usable
// content for question rewriting. Turns that ended in a refusal or an error
// would only confuse the rephraser.
var ExcludedRephraseStatuses = []entity.AnswerStatus{
	entity.AnswerStatusPending,
	entity.AnswerStatusBanned,
	entity.AnswerStatusGuardrailsForbiddenWords,
	entity.AnswerStatusGuardrailsJailbreak,
	entity.AnswerStatusGuardrailsQuestionRouting,
	entity.AnswerStatusGuardrailsAnswer,
	entity.AnswerStatusErrorForbiddenWords,
	entity.AnswerStatusErrorJailbreak,
	entity.AnswerStatusErrorQuestionRephrasing,
	entity.AnswerStatusErrorQuestionRouting,
	entity.AnswerStatusErrorAnswerGuardrail,
	entity.AnswerStatusErrorContextLength,
	entity.AnswerStatusErrorInvalidLLMResponse,
	entity.AnswerStatusErrorRequest,
	entity.AnswerStatusErrorTimeout,
}

// DefaultCannedFixed maps every failure case to its pre-approved user-facing
// text. Raw provider output never reaches the user.
var DefaultCannedFixed = map[string]string{
	canned.KeyForbiddenWords:      "I can't help with that question. Try asking about our published content instead.",
	canned.KeyJailbreak:           "I can only answer questions about our published content.",
	canned.KeyQuestionRouting:     "I can't help with that request, but I'm happy to answer questions about our content.",
	canned.KeyAnswerGuardrail:     "I couldn't produce a safe answer to that question. Could you try rephrasing it?",
	canned.KeyNoRelevantContent:   "I couldn't find anything in our content that answers your question. Try rewording it, or ask about a different topic.",
	canned.KeyLLMDeclined:         "I couldn't put together a reliable answer from our content. Try making your question more specific.",
	canned.KeyUnsuccessfulRequest: "Something went wrong while answering your question. Please try again in a moment.",
	canned.KeyContextLength:       "Your question pulled in more material than I can read at once. Try asking something more specific.",
	canned.KeyTimeout:             "Answering took longer than expected and was stopped. Please try again.",
}

// DefaultCannedByLabel gives each non-genuine routing label a small pool of
// responses so repeated greetings don't read scripted.
var DefaultCannedByLabel = map[string][]string{
	RoutingLabelGreetings: {
		"Hello! Ask me anything about our content and I'll dig up an answer.",
		"Hi there! What would you like to know?",
		"Hey! I'm here to answer questions about our content. What can I look up for you?",
	},
	RoutingLabelClarification: {
		"I'm not quite sure what you're asking. Could you add a bit more detail?",
		"Could you rephrase that? A little more context helps me find the right answer.",
	},
	RoutingLabelProhibited: {
		"I can't help with that. I'm limited to questions about our published content.",
	},
	RoutingLabelOffTopic: {
		"That's outside what I can answer. I only cover our published content.",
		"I stick to questions about our content, so I can't help with that one.",
	},
}
