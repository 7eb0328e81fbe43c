package guardrail

import (
	"context"
	"strings"
	"unicode"
)

// WordlistChecker matches text against a static forbidden-word list. It
// makes no provider call, so the forbidden-terms guardrail can reject a
// question before any model is reached.
type WordlistChecker struct {
	words []string
}

var _ Checker = &WordlistChecker{}

func NewWordlistChecker(words []string) *WordlistChecker {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			normalized = append(normalized, w)
		}
	}
	return &WordlistChecker{words: normalized}
}

// Check reports fail with the matched words as failure tags, in list order.
func (c *WordlistChecker) Check(_ context.Context, text string, _ Policy) (*Verdict, error) {
	matches := c.Matches(text)
	if len(matches) == 0 {
		return &Verdict{Status: VerdictPass}, nil
	}
	return &Verdict{Status: VerdictFail, Failures: matches}, nil
}

// Matches returns the forbidden words present in text as whole words,
// case-insensitive.
func (c *WordlistChecker) Matches(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f] = true
	}

	var matches []string
	for _, w := range c.words {
		if strings.Contains(w, " ") {
			// multi-word entries fall back to substring matching
			if strings.Contains(strings.ToLower(text), w) {
				matches = append(matches, w)
			}
			continue
		}
		if present[w] {
			matches = append(matches, w)
		}
	}
	return matches
}
