package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/policyflow/policyflow/internal/config"
)

func TestSecurityHeaders(t *testing.T) {
	cfg := config.SecurityHeadersConfig{
		Enabled:            true,
		HSTSMaxAge:         31536000,
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS header = %v, want max-age=31536000; includeSubDomains", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != cfg.FrameOptions {
		t.Errorf("Frame Options header = %v, want %v", got, cfg.FrameOptions)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != cfg.ContentTypeOptions {
		t.Errorf("Content Type Options header = %v, want %v", got, cfg.ContentTypeOptions)
	}
	if got := w.Header().Get("Referrer-Policy"); got != cfg.ReferrerPolicy {
		t.Errorf("Referrer Policy header = %v, want %v", got, cfg.ReferrerPolicy)
	}
}

func TestSecurityHeaders_Disabled(t *testing.T) {
	handler := SecurityHeaders(config.SecurityHeadersConfig{Enabled: false})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Frame-Options"); got != "" {
		t.Errorf("Frame Options header = %v, want empty when disabled", got)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	handler := RequestSizeLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/test", strings.NewReader("tiny"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("small body: got status %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest("POST", "/test", strings.NewReader("definitely more than eight bytes"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: got status %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}
