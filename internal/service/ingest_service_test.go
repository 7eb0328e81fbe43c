package service

import (
	"testing"

	"qna-chat-be/internal/dto"
)

func TestPassageDigest(t *testing.T) {
	base := dto.IngestPassageRequest{
		Locale:      "en",
		Title:       "Password reset",
		HeadingPath: "Account > Security",
		ExactPath:   "/docs/account/security#reset",
		Content:     "Use the forgot password link.",
	}

	same := base
	if passageDigest(base) != passageDigest(same) {
		t.Error("identical passages should share a digest")
	}

	changedContent := base
	changedContent.Content = "Use the forgot password link on the login page."
	if passageDigest(base) == passageDigest(changedContent) {
		t.Error("changed content should change the digest")
	}

	changedLocale := base
	changedLocale.Locale = "de"
	if passageDigest(base) == passageDigest(changedLocale) {
		t.Error("changed locale should change the digest")
	}

	// The description is display-only metadata, not part of the identity.
	changedDescription := base
	changedDescription.Description = "a new blurb"
	if passageDigest(base) != passageDigest(changedDescription) {
		t.Error("description changes should not change the digest")
	}

	// Separator injection must not collide: ("ab","c") != ("a","bc").
	a := dto.IngestPassageRequest{Locale: "ab", ExactPath: "c"}
	b := dto.IngestPassageRequest{Locale: "a", ExactPath: "bc"}
	if passageDigest(a) == passageDigest(b) {
		t.Error("field boundaries collide in the digest")
	}
}
