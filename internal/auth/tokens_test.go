package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret: []byte("test-secret-key-at-least-32-chars!!"),
		Issuer: "policyflow-test",
		TTL:    15 * time.Minute,
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	cfg := testTokenConfig()
	name := "Alice"
	user := &domain.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Name:  &name,
	}

	raw, err := NewAccessToken(cfg, user)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, raw)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}

	if claims.Subject != user.ID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID.String())
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Name != "Alice" {
		t.Errorf("Name = %q, want %q", claims.Name, "Alice")
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		t.Fatalf("UserIDFromClaims failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("UserIDFromClaims = %s, want %s", userID, user.ID)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	cfg := testTokenConfig()
	user := &domain.User{ID: uuid.New(), Email: "bob@example.com"}

	raw, err := NewAccessToken(cfg, user)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	other := cfg
	other.Secret = []byte("a-completely-different-secret-key!!")
	if _, err := ParseAccessToken(other, raw); err != domain.ErrInvalidToken {
		t.Errorf("ParseAccessToken with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	cfg := testTokenConfig()
	cfg.TTL = -time.Minute
	user := &domain.User{ID: uuid.New(), Email: "bob@example.com"}

	raw, err := NewAccessToken(cfg, user)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, raw); err != domain.ErrInvalidToken {
		t.Errorf("ParseAccessToken with expired token = %v, want ErrInvalidToken", err)
	}
}

func TestParseAccessToken_Garbage(t *testing.T) {
	if _, err := ParseAccessToken(testTokenConfig(), "not-a-token"); err != domain.ErrInvalidToken {
		t.Errorf("ParseAccessToken(garbage) = %v, want ErrInvalidToken", err)
	}
}
