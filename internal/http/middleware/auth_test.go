package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/auth"
	"github.com/policyflow/policyflow/pkg/domain"
)

func newAuthService() *auth.Service {
	return auth.NewService(nil, auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "policyflow-test",
		TTL:    time.Minute,
	}, nil, nil)
}

func okHandler(gotUserID *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetUserID(r.Context()); ok {
			*gotUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader(t *testing.T) {
	var got uuid.UUID
	handler := Auth(newAuthService())(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	var got uuid.UUID
	handler := Auth(newAuthService())(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	cfg := auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "policyflow-test",
		TTL:    time.Minute,
	}
	user := &domain.User{ID: uuid.New(), Email: "a@example.com"}
	token, err := auth.NewAccessToken(cfg, user)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	var got uuid.UUID
	handler := Auth(newAuthService())(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != user.ID {
		t.Errorf("context user ID = %v, want %v", got, user.ID)
	}
}

func TestRequireTier_RequiresAuth(t *testing.T) {
	handler := RequireTier(nil, domain.PlanFoundational, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/organizations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
