package core

import (
	"net/mail"
	"testing"
)

func TestEmailMessage_Render(t *testing.T) {
	msg := EmailMessage{
		To:      []mail.Address{{Address: "teacher@school.test"}},
		Subject: "Rappel",
		BodyStr: "Devoirs à rendre vendredi.",
	}
	if msg.HasContent() {
		t.Error("HasContent() = true before rendering")
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if msg.TextContent != msg.BodyStr {
		t.Errorf("TextContent = %q, want %q", msg.TextContent, msg.BodyStr)
	}
	if !msg.HasContent() || !msg.HasRecipients() {
		t.Errorf("HasContent() = %t, HasRecipients() = %t", msg.HasContent(), msg.HasRecipients())
	}

	empty := EmailMessage{Subject: "Rappel"}
	if err := empty.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if empty.HasContent() || empty.HasRecipients() {
		t.Error("empty message reported as sendable")
	}
}
