package handlers

import (
	"net/http"

	applog "vitrine/internal/log"
	"vitrine/internal/views/layout"
)

// Home renders the storefront shell of the tenant addressed by the request.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap, ok := loadStorefront(r)
	if !ok {
		applog.Error(r.Context(), "storefront loader not configured")
		http.Error(w, "storefront unavailable", http.StatusServiceUnavailable)
		return
	}

	scheme := currentScheme(r)
	page := layout.Page{Head: snap.Head, TokenCSS: snap.Scope.CSS(), Scheme: scheme}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Storefront-State", snap.State.String())
	if err := layout.Document(page, layout.Storefront(snap.Profile, scheme)).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render storefront", "host", r.Host, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
