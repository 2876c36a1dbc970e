// Package storefront turns a hostname into a themed storefront: tenant
// resolution, then concurrent profile and theme fetches, then token
// projection and head metadata.
package storefront

import (
	"net/url"
	"time"

	"vitrine/internal/gateway"
	"vitrine/internal/metrics"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

// State is a step of a storefront load.
type State int

const (
	StateIdle State = iota
	StateResolvingTenant
	StateFetchingProfileAndTheme
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingTenant:
		return "resolving_tenant"
	case StateFetchingProfileAndTheme:
		return "fetching_profile_and_theme"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Terminal reports whether a load stops in s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateDegraded
}

// Transition is reported to observers on every state change.
type Transition struct {
	From     State
	To       State
	Identity tenant.Identity
	Elapsed  time.Duration
}

// Observer receives transitions. Observers run synchronously on the loading
// goroutine and must not block.
type Observer func(Transition)

// RecordMetrics is an Observer feeding the storefront load metrics.
func RecordMetrics(t Transition) {
	if t.To.Terminal() {
		metrics.RecordStorefrontLoad(t.To.String(), t.Elapsed)
	}
}

// Snapshot is the outcome of one load.
type Snapshot struct {
	Host     string
	State    State
	Identity tenant.Identity
	// Profile is never nil; it falls back to DefaultProfile.
	Profile *models.Business
	// Theme is the tenant's validated document, nil when it has none.
	Theme *theme.Config
	Scope *theme.MemoryScope
	Head  *meta.Head

	ProfileErr *gateway.Error
	ThemeErr   *gateway.Error
}

// Manifest returns the registry key and version of the snapshot's manifest
// link, if one was installed.
func (s *Snapshot) Manifest() (owner, version string, ok bool) {
	if s.Head == nil {
		return "", "", false
	}
	for _, l := range s.Head.LinksByRel("manifest") {
		u, err := url.Parse(l.Href)
		if err != nil {
			continue
		}
		if v := u.Query().Get("v"); v != "" {
			return meta.ManifestOwner(s.Profile), v, true
		}
	}
	return "", "", false
}

// DefaultProfile is shown when no tenant can be resolved.
func DefaultProfile() *models.Business {
	return &models.Business{
		Name:        "Vitrine",
		Description: "Your favourite stores, online",
	}
}
