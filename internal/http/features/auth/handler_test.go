package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegister_Validation(t *testing.T) {
	handler := &Handler{logger: nil, authService: nil}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `not-json`, http.StatusBadRequest},
		{"missing email", `{"password":"secret123"}`, http.StatusBadRequest},
		{"missing password", `{"email":"a@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	handler := &Handler{logger: nil, authService: nil}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"empty body", `{}`, http.StatusBadRequest},
		{"missing password", `{"email":"a@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
