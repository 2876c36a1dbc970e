package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"vitrine/internal/storefront"
	"vitrine/internal/views/meta"
)

// Dependencies are the shared collaborators of the HTTP handlers.
type Dependencies struct {
	Sessions  *scs.SessionManager
	Loader    *storefront.Loader
	Manifests *meta.ManifestRegistry
	// Ping probes the data backend for /healthz. Nil skips the probe.
	Ping func(context.Context) error
	// Development enables the ?tenant= override.
	Development bool
}

var (
	sessionManager *scs.SessionManager
	loader         *storefront.Loader
	manifests      *meta.ManifestRegistry
	pingBackend    func(context.Context) error
	development    bool
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(deps Dependencies) {
	sessionManager = deps.Sessions
	loader = deps.Loader
	manifests = deps.Manifests
	pingBackend = deps.Ping
	development = deps.Development
}

// loadStorefront runs the storefront pipeline for the request's host.
func loadStorefront(r *http.Request) (*storefront.Snapshot, bool) {
	if loader == nil {
		return nil, false
	}
	req := storefront.Request{Host: r.Host}
	if development {
		req.Subdomain = strings.TrimSpace(r.URL.Query().Get("tenant"))
	}
	return loader.Load(r.Context(), req), true
}
