package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/policyflow/policyflow/internal/config"
)

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := RateLimitConfig{
		Requests: 2,
		Window:   time.Second,
		Logger:   logger,
	}

	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Third request: got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestNoRateLimit(t *testing.T) {
	handler := NoRateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestCreateRateLimiters_Disabled(t *testing.T) {
	limiters := CreateRateLimiters(config.RateLimitConfig{Enabled: false}, nil)

	for _, key := range []string{"auth", "webhook", "generate"} {
		mw, ok := limiters[key]
		if !ok {
			t.Fatalf("missing %q limiter", key)
		}
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		for i := 0; i < 50; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("%s limiter request %d: got status %d, want %d", key, i, w.Code, http.StatusOK)
			}
		}
	}
}

func TestCreateRateLimiters_Enabled(t *testing.T) {
	limiters := CreateRateLimiters(config.RateLimitConfig{
		Enabled:                   true,
		AuthRequestsPerMinute:     1,
		WebhookRequestsPerMinute:  1,
		GenerateRequestsPerMinute: 1,
	}, nil)

	handler := limiters["auth"](http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("First request: got status %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Second request: got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
