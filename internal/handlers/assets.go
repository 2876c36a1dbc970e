package handlers

import (
	"encoding/hex"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"

	applog "vitrine/internal/log"
)

// ThemeCSS serves the resolved design tokens of the tenant as a stylesheet.
func ThemeCSS(w http.ResponseWriter, r *http.Request) {
	snap, ok := loadStorefront(r)
	if !ok {
		http.Error(w, "storefront unavailable", http.StatusServiceUnavailable)
		return
	}

	css := snap.Scope.CSS()
	sum := blake2b.Sum256([]byte(css))
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if _, err := w.Write([]byte(css)); err != nil {
		applog.Error(r.Context(), "failed to write theme css", "error", err)
	}
}

// Manifest serves the web app manifest installed for the tenant. A version
// other than the current one is gone.
func Manifest(w http.ResponseWriter, r *http.Request) {
	snap, ok := loadStorefront(r)
	if !ok || manifests == nil {
		http.Error(w, "storefront unavailable", http.StatusServiceUnavailable)
		return
	}

	owner, _, installed := snap.Manifest()
	if !installed {
		http.NotFound(w, r)
		return
	}
	m, found := manifests.Lookup(owner, r.URL.Query().Get("v"))
	if !found {
		applog.Debug(r.Context(), "manifest version not found", "owner", owner, "version", r.URL.Query().Get("v"))
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(m.Body); err != nil {
		applog.Error(r.Context(), "failed to write manifest", "error", err)
	}
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
