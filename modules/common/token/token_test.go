package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tok, err := Issue("test-secret", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(strings.Split(tok, ".")) != 3 {
		t.Fatalf("token is not three dot-separated segments: %q", tok)
	}

	subject, err := Verify("test-secret", tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "user@example.com" {
		t.Errorf("subject = %q, want user@example.com", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := Issue("test-secret", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := Verify("other-secret", tok); err == nil {
		t.Error("expected signature error with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := Issue("test-secret", "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := Verify("test-secret", tok); err == nil {
		t.Error("expected expiry error")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d"} {
		if _, err := Verify("test-secret", tok); err == nil {
			t.Errorf("expected error for malformed token %q", tok)
		}
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	if _, err := Issue("", "user@example.com", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestFromAuthorizationHeader(t *testing.T) {
	if got := FromAuthorizationHeader("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Errorf("got %q", got)
	}
	if got := FromAuthorizationHeader("Basic abc"); got != "" {
		t.Errorf("non-bearer header should yield empty, got %q", got)
	}
	if got := FromAuthorizationHeader(""); got != "" {
		t.Errorf("empty header should yield empty, got %q", got)
	}
}
