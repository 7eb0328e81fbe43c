package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short message used as is",
			message: "How do I reset my password?",
			want:    "How do I reset my password?",
		},
		{
			name:    "surrounding whitespace trimmed",
			message: "  spaced out  ",
			want:    "spaced out",
		},
		{
			name:    "exactly eighty runes kept whole",
			message: strings.Repeat("a", 80),
			want:    strings.Repeat("a", 80),
		},
		{
			name:    "long ascii message cut at eighty runes",
			message: strings.Repeat("a", 200),
			want:    strings.Repeat("a", 80),
		},
		{
			name:    "long multi-byte message cut at eighty runes",
			message: strings.Repeat("é", 200),
			want:    strings.Repeat("é", 80),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversationTitle(tt.message)
			if got != tt.want {
				t.Errorf("conversationTitle() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("conversationTitle() produced invalid UTF-8: %q", got)
			}
		})
	}
}
