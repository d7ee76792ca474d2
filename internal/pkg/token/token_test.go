package token

import (
	"errors"
	"testing"

	"github.com/MiguelBorja/TechTix/internal/pkg/env"
	"github.com/golang-jwt/jwt/v5"
)

func setTestSecret(t *testing.T, secret string) {
	t.Helper()
	old := env.Env
	env.Env = map[string]string{"JWT_SECRET": secret}
	t.Cleanup(func() { env.Env = old })
}

func TestIssueAndVerify(t *testing.T) {
	setTestSecret(t, "test-secret")

	tok, err := Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id = %d, want 42", claims.UserID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatalf("registered claims not set")
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	setTestSecret(t, "")

	if _, err := Issue(1); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	setTestSecret(t, "test-secret")

	for _, tok := range []string{"", "   ", "not.a.token", "a.b"} {
		if _, err := Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	setTestSecret(t, "first-secret")
	tok, err := Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	env.Env = map[string]string{"JWT_SECRET": "second-secret"}
	if _, err := Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify with rotated secret = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	setTestSecret(t, "test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}
	if _, err := Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify(alg=none) = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsZeroUserID(t *testing.T) {
	setTestSecret(t, "test-secret")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 0}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	if _, err := Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify without user id = %v, want ErrInvalidToken", err)
	}
}
