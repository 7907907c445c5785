package invitations

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/http/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestAccept_RequiresAuth(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/invitations/abc/accept", nil)
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAccept_RequiresToken(t *testing.T) {
	handler := &Handler{}

	// Without a chi route context the token URL param is empty.
	req := authedRequest(http.MethodPost, "/v1/invitations//accept", "")
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreate_Validation(t *testing.T) {
	handler := &Handler{}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing email", `{}`, http.StatusBadRequest},
		{"invalid role", `{"email":"a@example.com","role":"owner"}`, http.StatusBadRequest},
	}

	orgID := uuid.New().String()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The org id in the URL is parsed before the body, so give
			// the body checks a valid one.
			req := authedRequest(http.MethodPost, fmt.Sprintf("/v1/organizations/%s/invitations", orgID), tt.body)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("orgID", orgID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCreate_RequiresAuth(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodPost, "/v1/organizations/x/invitations", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCancel_InvalidID(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodDelete, "/v1/organizations/x/invitations/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.Cancel(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
