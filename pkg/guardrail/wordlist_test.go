package guardrail

import (
	"context"
	"reflect"
	"testing"
)

func TestWordlistMatches(t *testing.T) {
	checker := NewWordlistChecker([]string{"Casino", "bet", "insider trading", " ", ""})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "clean text",
			text: "How do I configure my account?",
			want: nil,
		},
		{
			name: "case insensitive whole word",
			text: "Where is the nearest CASINO?",
			want: []string{"casino"},
		},
		{
			name: "partial word does not match",
			text: "The alphabet song",
			want: nil,
		},
		{
			name: "punctuation separated",
			text: "casino, anyone?",
			want: []string{"casino"},
		},
		{
			name: "multi-word entry matches as substring",
			text: "tips on insider trading please",
			want: []string{"insider trading"},
		},
		{
			name: "multiple matches in list order",
			text: "bet on the casino",
			want: []string{"casino", "bet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.Matches(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestWordlistCheck(t *testing.T) {
	checker := NewWordlistChecker([]string{"gambling"})

	verdict, err := checker.Check(context.Background(), "all about gambling", Policy{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if verdict.Status != VerdictFail {
		t.Errorf("Status = %s, want fail", verdict.Status)
	}
	if len(verdict.Failures) != 1 || verdict.Failures[0] != "gambling" {
		t.Errorf("Failures = %v", verdict.Failures)
	}
	if verdict.Response != nil {
		t.Error("static checker should not carry a provider response")
	}

	verdict, err = checker.Check(context.Background(), "all about cooking", Policy{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if verdict.Status != VerdictPass {
		t.Errorf("Status = %s, want pass", verdict.Status)
	}
}
