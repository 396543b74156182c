package authtoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := NewSigner("test-secret", time.Minute)
	uid := uuid.New()
	tok, err := s.Issue(uid, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rd, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rd.UserID != uid || rd.Role != "admin" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
	if !rd.IsPrivileged() {
		t.Fatalf("admin should be privileged")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	tok, err := NewSigner("one", time.Minute).Issue(uuid.New(), "editor")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewSigner("two", time.Minute).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDisabledSigner(t *testing.T) {
	s := NewSigner("", 0)
	if s.Enabled() {
		t.Fatalf("empty secret should disable signing")
	}
	if _, err := s.Issue(uuid.New(), "admin"); err == nil {
		t.Fatalf("expected Issue to fail without a secret")
	}
}
