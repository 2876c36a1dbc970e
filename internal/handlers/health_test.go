package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) healthResponse {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Time.IsZero() {
		t.Fatal("expected response time to be populated")
	}
	return resp
}

func TestHealthWithoutProbe(t *testing.T) {
	Configure(Dependencies{})

	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if resp := decodeHealth(t, w); resp.Status != "ok" || resp.Backend != "unchecked" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHealthProbesBackend(t *testing.T) {
	tests := []struct {
		name    string
		ping    error
		code    int
		status  string
		backend string
	}{
		{name: "reachable", code: http.StatusOK, status: "ok", backend: "ok"},
		{name: "unreachable", ping: errors.New("connection refused"), code: http.StatusServiceUnavailable, status: "unavailable", backend: "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var probed bool
			Configure(Dependencies{Ping: func(ctx context.Context) error {
				probed = true
				if _, ok := ctx.Deadline(); !ok {
					t.Fatal("expected probe context to carry a deadline")
				}
				return tt.ping
			}})
			t.Cleanup(func() { Configure(Dependencies{}) })

			w := httptest.NewRecorder()
			Health(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if !probed {
				t.Fatal("expected backend probe to run")
			}
			if w.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, w.Code)
			}
			if resp := decodeHealth(t, w); resp.Status != tt.status || resp.Backend != tt.backend {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}
