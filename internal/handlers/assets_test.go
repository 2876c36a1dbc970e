package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vitrine/internal/views/meta"
)

func TestThemeCSSUsesETag(t *testing.T) {
	sm := configureTestStorefront(t, false)

	req := httptest.NewRequest(http.MethodGet, "/theme.css", nil)
	req.Host = "acme.mystore.app"
	first := serve(sm, ThemeCSS, req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", first.Code)
	}
	if ct := first.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("expected text/css, got %q", ct)
	}
	if !strings.HasPrefix(first.Body.String(), ":root {") {
		t.Fatalf("unexpected css:\n%s", first.Body.String())
	}
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	again := httptest.NewRequest(http.MethodGet, "/theme.css", nil)
	again.Host = "acme.mystore.app"
	again.Header.Set("If-None-Match", etag)
	if w := serve(sm, ThemeCSS, again); w.Code != http.StatusNotModified {
		t.Fatalf("expected status 304, got %d", w.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/theme.css", nil)
	other.Host = "bloom.mystore.app"
	other.Header.Set("If-None-Match", etag)
	if w := serve(sm, ThemeCSS, other); w.Code != http.StatusOK {
		t.Fatalf("expected another tenant's css to miss the etag, got %d", w.Code)
	}
}

func TestManifestServesCurrentVersion(t *testing.T) {
	sm := configureTestStorefront(t, false)

	req := httptest.NewRequest(http.MethodGet, "/manifest.webmanifest", nil)
	req.Host = "acme.mystore.app"
	w := serve(sm, Manifest, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/manifest+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var m meta.Manifest
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.Name != "Acme Goods" || !strings.HasPrefix(m.ThemeColor, "#") || len(m.ThemeColor) != 7 {
		t.Fatalf("unexpected manifest %+v", m)
	}

	stale := httptest.NewRequest(http.MethodGet, "/manifest.webmanifest?v=deadbeef", nil)
	stale.Host = "acme.mystore.app"
	if w := serve(sm, Manifest, stale); w.Code != http.StatusNotFound {
		t.Fatalf("expected revoked version to 404, got %d", w.Code)
	}
}
