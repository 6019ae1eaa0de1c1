package handlers

import (
	"bytes"
	"strings"
	"testing"
)

func TestMailer_DisabledDropsSends(t *testing.T) {
	setTestSecret()

	mailer, err := NewMailer(MailerConfig{})
	if err != nil {
		t.Fatalf("NewMailer returned error: %v", err)
	}

	if err := mailer.SendVerification("wade@example.com", "wade", "http://localhost:8000/"); err != nil {
		t.Errorf("Disabled mailer should drop verification mail silently, got %v", err)
	}
	if err := mailer.SendPasswordReset("wade@example.com", "wade", "http://localhost:8000/", "hashed"); err != nil {
		t.Errorf("Disabled mailer should drop reset mail silently, got %v", err)
	}
}

func TestMailTemplates_Verification(t *testing.T) {
	var body bytes.Buffer
	data := mailData{Username: "wade", Link: "http://localhost:8000/api/auth/confirmed_email/tok123"}

	if err := mailTemplates.ExecuteTemplate(&body, "verify_email.html", data); err != nil {
		t.Fatalf("Template failed to render: %v", err)
	}

	html := body.String()
	if !strings.Contains(html, "wade") {
		t.Error("Verification mail should greet the user by name")
	}
	if !strings.Contains(html, data.Link) {
		t.Error("Verification mail should contain the confirmation link")
	}
}

func TestMailTemplates_PasswordReset(t *testing.T) {
	var body bytes.Buffer
	data := mailData{Username: "wade", Link: "http://localhost:8000/api/auth/confirm_reset_password/tok123"}

	if err := mailTemplates.ExecuteTemplate(&body, "reset_password.html", data); err != nil {
		t.Fatalf("Template failed to render: %v", err)
	}

	html := body.String()
	if !strings.Contains(html, "wade") {
		t.Error("Reset mail should greet the user by name")
	}
	if !strings.Contains(html, data.Link) {
		t.Error("Reset mail should contain the reset link")
	}
}
