package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vitrine/internal/config"
	"vitrine/internal/gateway"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.SupabaseConfig{URL: srv.URL + "/", AnonKey: "anon-key", Timeout: 2 * time.Second})
}

func TestBusinessBySubdomain(t *testing.T) {
	t.Parallel()

	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/businesses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey header = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer anon-key" {
			t.Errorf("authorization header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("subdomain") != "eq.acme" || q.Get("limit") != "1" || q.Get("select") != "*" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"b-1","name":"Acme Goods","description":"Everything","logo_url":"https://cdn/acme.png","subdomain":"acme","phone":null}]`))
	})

	b, err := store.BusinessBySubdomain(context.Background(), "acme")
	if err != nil {
		t.Fatalf("BusinessBySubdomain(): %v", err)
	}
	if b.ID != "b-1" || b.Name != "Acme Goods" || b.LogoURL != "https://cdn/acme.png" {
		t.Fatalf("unexpected business %+v", b)
	}
	if b.Phone != nil {
		t.Fatalf("expected nil phone, got %q", *b.Phone)
	}
}

func TestBusinessByIDNotFound(t *testing.T) {
	t.Parallel()

	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "eq.missing" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := store.BusinessByID(context.Background(), "missing"); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestThemeDocument(t *testing.T) {
	t.Parallel()

	docs := map[string]string{
		"themed": `[{"config":{"colors":{"light":{"background":"#fff"}}}}]`,
		"null":   `[{"config":null}]`,
		"none":   `[]`,
	}
	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/business_themes" || r.URL.Query().Get("select") != "config" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		id := r.URL.Query().Get("business_id")[len("eq."):]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(docs[id]))
	})
	ctx := context.Background()

	doc, err := store.ThemeDocument(ctx, "themed")
	if err != nil || string(doc) != `{"colors":{"light":{"background":"#fff"}}}` {
		t.Fatalf("ThemeDocument(themed) = %s, %v", doc, err)
	}
	for _, id := range []string{"null", "none"} {
		if _, err := store.ThemeDocument(ctx, id); !errors.Is(err, gateway.ErrNotFound) {
			t.Fatalf("ThemeDocument(%s): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestServerErrorIsTransportFailure(t *testing.T) {
	t.Parallel()

	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	})

	_, err := store.BusinessByID(context.Background(), "b-1")
	if err == nil || errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}

	res := gateway.New(store, nil).ProfileByID(context.Background(), "b-1")
	if res.Err == nil || res.Err.Kind != gateway.KindTransport {
		t.Fatalf("expected transport result, got %+v", res)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping(): %v", err)
	}
}
