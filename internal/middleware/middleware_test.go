package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket-dashboard/internal/config"
	"basket-dashboard/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default().Security
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1

	h := RateLimit(NewRateLimiter(cfg), testLogger())(okHandler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMIT_EXCEEDED")

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.9:5000"
	third := httptest.NewRecorder()
	h.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code, "limits are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := config.Default().Security
	cfg.EnableRateLimit = false
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1

	h := RateLimit(NewRateLimiter(cfg), testLogger())(okHandler)
	for range 5 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCORS(t *testing.T) {
	cfg := config.SecurityConfig{AllowedOrigins: []string{"http://localhost:8084"}}
	h := CORS(cfg)(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/mine", nil)
	req.Header.Set("Origin", "http://localhost:8084")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8084", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientIP(t *testing.T) {
	trusted := []string{"127.0.0.1"}

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"trusted proxy forwards first hop", "127.0.0.1:4000", "203.0.113.7, 10.0.0.1", "", "203.0.113.7"},
		{"trusted proxy with real ip", "127.0.0.1:4000", "", "203.0.113.8", "203.0.113.8"},
		{"trusted proxy without headers", "127.0.0.1:4000", "", "", "127.0.0.1"},
		{"untrusted peer is not believed", "198.51.100.2:4000", "203.0.113.7", "203.0.113.8", "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, clientIP(req, trusted))
		})
	}
}

func TestRateLimit_SpoofedForwardingIgnored(t *testing.T) {
	cfg := config.Default().Security
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	cfg.TrustedProxies = nil

	h := RateLimit(NewRateLimiter(cfg), testLogger())(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRateLimit_ProbesUnlimited(t *testing.T) {
	cfg := config.Default().Security
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1

	h := RateLimit(NewRateLimiter(cfg), testLogger())(okHandler)
	for range 3 {
		for _, path := range []string{"/health", "/metrics"} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	}
}

func TestRecovery(t *testing.T) {
	h := Chain(RequestID(), Recovery(testLogger()))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestObserve_PreservesFlusherAndSpan(t *testing.T) {
	var flushable, traced bool
	h := Observe(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
		traced = observability.GetSpan(r.Context()) != nil
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, "ok")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, flushable)
	assert.True(t, traced)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
