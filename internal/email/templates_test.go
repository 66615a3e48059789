package email

import (
	"strings"
	"testing"
)

func TestBuildRegisterOTPEmail_CarriesCodeInBothBodies(t *testing.T) {
	msg := BuildRegisterOTPEmail("Dataset Market", "support@datamarket.test", "48213")

	if !strings.Contains(msg.Subject, "Dataset Market") {
		t.Fatalf("expected app name in subject, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "48213") {
		t.Fatalf("expected code in text body")
	}
	if !strings.Contains(msg.HTML, "48213") {
		t.Fatalf("expected code in html body")
	}
	if !strings.Contains(msg.HTML, "support@datamarket.test") {
		t.Fatalf("expected support contact in html body")
	}
}

func TestBuildResetPasswordEmail_MentionsReset(t *testing.T) {
	msg := BuildResetPasswordEmail("Dataset Market", "support@datamarket.test", "90115")

	if !strings.Contains(msg.Subject, "password reset") {
		t.Fatalf("expected reset subject, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "90115") || !strings.Contains(msg.HTML, "90115") {
		t.Fatalf("expected code in both bodies")
	}
}

func TestBuildAccountActivatedEmail_FallbackName(t *testing.T) {
	msg := BuildAccountActivatedEmail("Dataset Market", "support@datamarket.test", "alice")
	if !strings.Contains(msg.Text, "Hello alice,") {
		t.Fatalf("expected username greeting, got %q", msg.Text)
	}

	msg = BuildAccountActivatedEmail("Dataset Market", "support@datamarket.test", "  ")
	if !strings.Contains(msg.Text, "Hello there,") {
		t.Fatalf("expected fallback greeting, got %q", msg.Text)
	}
}
