package mail

import (
	"strings"
	"testing"
)

func TestConfirmationBodiesCarryRegistrationID(t *testing.T) {
	text, html := confirmationBodies("alice", "3f6c1c1e-8a2b-4f35-9a51-0a4f2b7c9d10")

	for _, body := range []string{text, html} {
		if !strings.Contains(body, "3f6c1c1e-8a2b-4f35-9a51-0a4f2b7c9d10") {
			t.Fatalf("body is missing the registration id: %q", body)
		}
		if !strings.Contains(body, "alice") {
			t.Fatalf("body is missing the recipient name: %q", body)
		}
	}
}

func TestReminderBodiesNameEventAndTime(t *testing.T) {
	text, html := reminderBodies("bob", "Go Conference", "Tue, 01 Sep 2026 09:00 UTC")

	for _, body := range []string{text, html} {
		if !strings.Contains(body, "Go Conference") {
			t.Fatalf("body is missing the event name: %q", body)
		}
		if !strings.Contains(body, "Tue, 01 Sep 2026 09:00 UTC") {
			t.Fatalf("body is missing the start time: %q", body)
		}
	}
}
