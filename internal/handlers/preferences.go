package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "vitrine/internal/log"
	"vitrine/internal/views/layout"
)

const sessionSchemeKey = "prefs:color-scheme"

type preferencesResponse struct {
	Scheme string `json:"scheme"`
}

// UpdateColorScheme stores the visitor's light/dark choice in the session.
func UpdateColorScheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		applog.Debug(r.Context(), "color scheme update with unsupported method", "method", r.Method, "htmx", isHTMX(r))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		applog.Error(r.Context(), "failed to parse preferences form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	value := strings.TrimSpace(r.FormValue("scheme"))
	if !layout.ValidScheme(value) {
		applog.Debug(r.Context(), "received invalid color scheme", "value", value)
		http.Error(w, "invalid color scheme", http.StatusBadRequest)
		return
	}

	if sessionManager == nil {
		applog.Debug(r.Context(), "session manager not configured; skipping preference persistence")
	} else {
		sessionManager.Put(r.Context(), sessionSchemeKey, value)
	}

	// the scheme class lives on <html>, so htmx callers reload the page
	if isHTMX(r) {
		refreshPage(w)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(preferencesResponse{Scheme: value}); err != nil {
		applog.Error(r.Context(), "failed to encode preferences response", "error", err)
	}
}

func currentScheme(r *http.Request) layout.SchemeDefinition {
	if sessionManager == nil {
		return layout.SchemeByID(layout.DefaultScheme)
	}
	return layout.SchemeByID(sessionManager.GetString(r.Context(), sessionSchemeKey))
}
