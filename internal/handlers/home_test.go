package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"vitrine/internal/db/mock"
	"vitrine/internal/gateway"
	"vitrine/internal/storefront"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
)

func configureTestStorefront(t *testing.T, dev bool) *scs.SessionManager {
	t.Helper()

	conn, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	registry := meta.NewManifestRegistry()
	sm := scs.New()
	Configure(Dependencies{
		Sessions:    sm,
		Loader:      storefront.NewLoader(tenant.NewResolver("", nil), gateway.New(gateway.NewGormStore(conn), nil), meta.NewSynchronizer(nil, registry)),
		Manifests:   registry,
		Development: dev,
	})
	t.Cleanup(func() { Configure(Dependencies{}) })
	return sm
}

func serve(sm *scs.SessionManager, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	sm.LoadAndSave(h).ServeHTTP(w, req)
	return w
}

func TestHomeRendersTenant(t *testing.T) {
	sm := configureTestStorefront(t, false)

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	req.Host = "acme.mystore.app"
	w := serve(sm, Home, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if state := w.Header().Get("X-Storefront-State"); state != "ready" {
		t.Fatalf("expected ready state header, got %q", state)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Acme Goods: Everything for everyone</title>",
		"--color-primary-950: 220 80% 50%;",
		`<link rel="manifest" href="/manifest.webmanifest?v=`,
		"<h1>Acme Goods</h1>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestHomeTenantOverrideOnlyInDevelopment(t *testing.T) {
	for _, dev := range []bool{true, false} {
		sm := configureTestStorefront(t, dev)

		req := httptest.NewRequest(http.MethodGet, "/?tenant=bloom", nil)
		req.Host = "localhost:8080"
		body := serve(sm, Home, req).Body.String()

		if got := strings.Contains(body, "<h1>Bloom &amp; Co</h1>"); got != dev {
			t.Fatalf("development=%t: bloom rendered = %t", dev, got)
		}
	}
}

func TestHomeWithoutLoader(t *testing.T) {
	Configure(Dependencies{})

	w := httptest.NewRecorder()
	Home(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}
