package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/soapnote/soapnote/internal/platform/auth"
)

func TestTokenBucket_AllowsBurst(t *testing.T) {
	b := newTokenBucket(1, 5)
	for i := 0; i < 5; i++ {
		if !b.allow() {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if b.allow() {
		t.Error("request beyond burst should be denied")
	}
}

func TestTokenBucket_RetryAfter(t *testing.T) {
	b := newTokenBucket(2, 1)
	b.allow() // drain the single token
	if ra := b.retryAfter(); ra < 1 {
		t.Errorf("expected retryAfter >= 1, got %d", ra)
	}
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("expected X-RateLimit-Limit header")
	}
}

func TestRateLimit_BlocksWhenExceeded(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	c1 := e.NewContext(req1, httptest.NewRecorder())
	if err := h(c1); err != nil {
		t.Fatalf("first request: expected no error, got %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req2, rec2)
	err := h(c2)
	if err == nil {
		t.Fatal("second request: expected rate limit error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func TestRateLimit_SeparateBucketsPerUser(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	asUser := func(uid string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/soap-notes", nil)
		ctx := context.WithValue(req.Context(), auth.UserIDKey, uid)
		req = req.WithContext(ctx)
		return e.NewContext(req, httptest.NewRecorder())
	}

	if err := h(asUser("alice")); err != nil {
		t.Fatalf("alice first request: expected no error, got %v", err)
	}
	if err := h(asUser("alice")); err == nil {
		t.Fatal("alice second request: expected rate limit error")
	}
	// A different user gets a separate bucket.
	if err := h(asUser("bob")); err != nil {
		t.Fatalf("bob first request: expected no error, got %v", err)
	}
}
