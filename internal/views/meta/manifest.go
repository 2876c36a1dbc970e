package meta

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// ManifestPath is where installed manifests are served.
const ManifestPath = "/manifest.webmanifest"

// Manifest is a web app manifest document.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description,omitempty"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons,omitempty"`
}

// ManifestIcon is one entry of Manifest.Icons.
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type,omitempty"`
}

// Installed is a manifest published under a content version.
type Installed struct {
	Version string
	Body    []byte
}

// Href is the URL the manifest link points at.
func (i Installed) Href() string {
	return ManifestPath + "?v=" + i.Version
}

// ManifestRegistry holds the current manifest of every tenant. Installing a
// new version revokes the previous one.
type ManifestRegistry struct {
	mu       sync.RWMutex
	byTenant map[string]Installed
}

// NewManifestRegistry returns an empty registry.
func NewManifestRegistry() *ManifestRegistry {
	return &ManifestRegistry{byTenant: make(map[string]Installed)}
}

// Install publishes m as the current manifest of tenant.
func (r *ManifestRegistry) Install(tenant string, m Manifest) (Installed, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return Installed{}, fmt.Errorf("encode manifest: %w", err)
	}
	sum := blake2b.Sum256(body)
	installed := Installed{Version: hex.EncodeToString(sum[:8]), Body: body}

	r.mu.Lock()
	r.byTenant[tenant] = installed
	r.mu.Unlock()
	return installed, nil
}

// Lookup returns the manifest of tenant. An empty version selects the
// current one; a revoked version is not found.
func (r *ManifestRegistry) Lookup(tenant, version string) (Installed, bool) {
	r.mu.RLock()
	installed, ok := r.byTenant[tenant]
	r.mu.RUnlock()
	if !ok {
		return Installed{}, false
	}
	if version != "" && version != installed.Version {
		return Installed{}, false
	}
	return installed, true
}

// Revoke drops the manifest of tenant.
func (r *ManifestRegistry) Revoke(tenant string) {
	r.mu.Lock()
	delete(r.byTenant, tenant)
	r.mu.Unlock()
}
