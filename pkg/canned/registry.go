package canned

import (
	"math/rand"
	"sync"
)

// Registry maps every guardrail/router/composer failure case to fixed,
// pre-approved user-facing text, and routing labels to a pool of canned
// responses picked at random. The end user only ever sees strings that come
// out of here — raw provider payloads stay in the answer's audit fields.
type Registry struct {
	mu      sync.Mutex
	fixed   map[string]string
	byLabel map[string][]string
	rnd     *rand.Rand
}

// Keys of the fixed canned messages.
const (
	KeyForbiddenWords      = "forbidden_words"
	KeyJailbreak           = "jailbreak"
	KeyQuestionRouting     = "question_routing"
	KeyAnswerGuardrail     = "answer_guardrail"
	KeyNoRelevantContent   = "no_relevant_content"
	KeyLLMDeclined         = "llm_declined"
	KeyUnsuccessfulRequest = "unsuccessful_request"
	KeyContextLength       = "context_length"
	KeyTimeout             = "timeout"
)

func NewRegistry(fixed map[string]string, byLabel map[string][]string, seed int64) *Registry {
	return &Registry{
		fixed:   fixed,
		byLabel: byLabel,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Fixed returns the canned text for a failure case. Missing keys fall back
// to the generic unsuccessful-request text so the user never sees an empty
// message.
func (r *Registry) Fixed(key string) string {
	if msg, ok := r.fixed[key]; ok {
		return msg
	}
	return r.fixed[KeyUnsuccessfulRequest]
}

// ForLabel returns one of the label's canned responses at random. Labels
// without a pool fall back to the generic unsuccessful-request text.
func (r *Registry) ForLabel(label string) string {
	pool, ok := r.byLabel[label]
	if !ok || len(pool) == 0 {
		return r.Fixed(KeyUnsuccessfulRequest)
	}
	if len(pool) == 1 {
		return pool[0]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rnd.Intn(len(pool))]
}
