package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"starry-api/internal/config"
)

func TestLimit_AllowsWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{MaxRequests: 5, Window: time.Minute})

	handler := limiter.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected request %d to pass, got %d", i+1, rec.Code)
		}
	}
}

func TestLimit_RejectsOverBudget(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{MaxRequests: 2, Window: time.Minute})

	handler := limiter.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		handler(rec, req)
		return rec
	}

	send()
	send()
	rec := send()

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Too many requests" {
		t.Errorf("Unexpected error message: %q", body.Error)
	}
	if body.RetryAfter < 1 {
		t.Errorf("Expected positive retryAfter, got %d", body.RetryAfter)
	}
}

func TestLimit_ClientsAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{MaxRequests: 1, Window: time.Minute})

	handler := limiter.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, addr := range []string{"10.0.0.3:1234", "10.0.0.4:1234"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = addr
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected first request from %s to pass, got %d", addr, rec.Code)
		}
	}
}
