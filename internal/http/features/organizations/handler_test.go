package organizations

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/http/middleware"
)

func TestCreate_RequiresAuth(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/organizations", bytes.NewBufferString(`{"name":"Acme"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/organizations", bytes.NewBufferString(`{}`))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	rec := httptest.NewRecorder()

	handler.Create(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGet_InvalidID(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/organizations/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
