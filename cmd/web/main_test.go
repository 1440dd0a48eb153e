package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"basket-dashboard/internal/config"
	"basket-dashboard/internal/models"
	"basket-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Test helper to create an analysis with the milk and bread baskets
func newTestAnalysis(t *testing.T, cfg *config.Config) *services.Analysis {
	t.Helper()

	a, err := newAnalysis(cfg, testLogger())
	if err != nil {
		t.Fatalf("newAnalysis() failed: %v", err)
	}

	testData := []models.Transaction{
		{TransactionID: "T1", ItemName: "milk", Quantity: 1},
		{TransactionID: "T1", ItemName: "bread", Quantity: 1},
		{TransactionID: "T2", ItemName: "milk", Quantity: 1},
		{TransactionID: "T2", ItemName: "bread", Quantity: 1},
		{TransactionID: "T3", ItemName: "milk", Quantity: 1},
		{TransactionID: "T4", ItemName: "bread", Quantity: 1},
	}
	if err := a.SetData(testData); err != nil {
		t.Fatalf("SetData() failed: %v", err)
	}
	return a
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Security.EnableRateLimit = false
	return newHandler(cfg, newTestAnalysis(t, cfg), testLogger())
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/itemsets", http.StatusOK, "application/json"},
		{"/api/rules", http.StatusOK, "application/json"},
		{"/api/scatter", http.StatusOK, "application/json"},
		{"/api/graph", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/no-such-page", http.StatusNotFound, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(h, http.MethodGet, tt.path, "")

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if w.Header().Get("X-Request-ID") == "" {
				t.Error("every response should carry a request id")
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test the full mine-then-query flow through the middleware chain
func TestServer_MineAndQuery(t *testing.T) {
	h := newTestHandler(t)

	w := do(h, http.MethodPost, "/api/mine", `{"min_support":0.5,"min_confidence":0.5,"min_lift":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("mine status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(h, http.MethodGet, "/api/rules?q=milk&sort=confidence", "")

	var response struct {
		Success bool          `json:"success"`
		Data    []models.Rule `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true in response")
	}
	if len(response.Data) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(response.Data))
	}

	rule := response.Data[0]
	if rule.Support != 0.5 {
		t.Errorf("support = %v, want 0.5", rule.Support)
	}
	if rule.Confidence < 0.66 || rule.Confidence > 0.67 {
		t.Errorf("confidence = %v, want about 0.667", rule.Confidence)
	}
	if rule.Lift < 0.88 || rule.Lift > 0.89 {
		t.Errorf("lift = %v, want about 0.889", rule.Lift)
	}
}

func TestServer_MineRejectsOutOfRangeSupport(t *testing.T) {
	h := newTestHandler(t)

	w := do(h, http.MethodPost, "/api/mine", `{"min_support":1.1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "VALIDATION_ERROR") {
		t.Errorf("expected a validation error, got %s", w.Body.String())
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		method string
		route  string
		body   string
	}{
		{http.MethodPost, "/sse/mine", `{"minSupport":0.5,"minConfidence":0.5,"minLift":0}`},
		{http.MethodGet, "/sse/filter?datastar=%7B%22query%22%3A%22milk%22%7D", ""},
		{http.MethodGet, "/sse/refresh-all", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			w := do(h, tt.method, tt.route, tt.body)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/rules", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/api/mine", http.StatusMethodNotAllowed},
		{"PATCH", "/api/dataset", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(h, tt.method, tt.path, "")

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	handler := newDashboardHandler(config.Default())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	// Test the template handler directly
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Market Basket Analysis") {
		t.Error("dashboard should contain title")
	}

	// Check for key dashboard components
	expectedComponents := []string{
		"Thresholds",
		"Association Rules",
		"Support vs Confidence",
		"Rule Network (top 20 rules)",
		"Frequent Itemsets",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}
