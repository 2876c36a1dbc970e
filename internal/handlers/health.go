package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	applog "vitrine/internal/log"
)

const pingTimeout = 2 * time.Second

type healthResponse struct {
	Status  string    `json:"status"`
	Backend string    `json:"backend"`
	Time    time.Time `json:"time"`
}

// Health reports readiness. With a backend probe configured, an unreachable
// data store answers 503 so the instance is taken out of rotation.
func Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: "unchecked", Time: time.Now().UTC()}
	status := http.StatusOK

	if pingBackend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := pingBackend(ctx)
		cancel()
		if err != nil {
			applog.Warn(r.Context(), "backend health probe failed", "error", err)
			resp.Status, resp.Backend = "unavailable", "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Backend = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
	}
}
