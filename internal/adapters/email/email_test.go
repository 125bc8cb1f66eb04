package email

import (
	"context"
	"strings"
	"testing"
)

func TestVerificationRequest(t *testing.T) {
	link := VerificationLink("http://localhost:8080/", "abc def")
	if link != "http://localhost:8080/verify-email?token=abc+def" {
		t.Errorf("link = %q", link)
	}
	req, err := VerificationRequest("a@b.in", "<Asha>", "Andheri", link)
	if err != nil {
		t.Fatalf("VerificationRequest: %v", err)
	}
	if len(req.To) != 1 || req.To[0] != "a@b.in" {
		t.Errorf("To = %v", req.To)
	}
	if strings.Contains(req.HTML, "<Asha>") {
		t.Error("name not escaped")
	}
	if !strings.Contains(req.HTML, "verify-email?token=abc&#43;def") && !strings.Contains(req.HTML, "verify-email?token=abc+def") {
		t.Errorf("link missing from body: %s", req.HTML)
	}
}

func TestNew_NoKeyIsNoop(t *testing.T) {
	s := New("", "noreply@smartflex.in")
	noop, ok := s.(*NoopSender)
	if !ok {
		t.Fatalf("expected *NoopSender, got %T", s)
	}
	if _, err := noop.Send(context.Background(), SendRequest{To: []string{"x@y.in"}, Subject: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := noop.Sent(); len(got) != 1 || got[0].Subject != "hi" {
		t.Errorf("Sent = %+v", got)
	}
}
