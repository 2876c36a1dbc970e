// Package gateway is the narrow read interface over tenant profiles and
// theme documents. Every lookup goes through the query cache and returns a
// Result; nothing here panics or returns a bare error to the page.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"vitrine/internal/cache"
	applog "vitrine/internal/log"
	"vitrine/internal/metrics"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

const (
	OpProfileByID        = "profile_by_id"
	OpProfileBySubdomain = "profile_by_subdomain"
	OpThemeConfig        = "theme_config"
)

// Store is a single-record lookup backend.
type Store interface {
	BusinessByID(ctx context.Context, id string) (*models.Business, error)
	BusinessBySubdomain(ctx context.Context, subdomain string) (*models.Business, error)
	// ThemeDocument returns the raw JSON theme of a business. A missing row
	// or a null document is ErrNotFound.
	ThemeDocument(ctx context.Context, businessID string) ([]byte, error)
}

// Gateway serves cached, typed lookups over a Store.
type Gateway struct {
	store Store
	cache *cache.Cache
}

// New wires a Gateway. A nil cache gets a private one with default windows.
func New(store Store, c *cache.Cache) *Gateway {
	if c == nil {
		c = cache.New(cache.Options{})
	}
	return &Gateway{store: store, cache: c}
}

// ProfileByID looks a business up by primary key.
func (g *Gateway) ProfileByID(ctx context.Context, id string) Result[models.Business] {
	return lookup(ctx, g, OpProfileByID, strings.TrimSpace(id), func(ctx context.Context, key string) ([]byte, error) {
		b, err := g.store.BusinessByID(ctx, key)
		if err != nil {
			return nil, err
		}
		return json.Marshal(b)
	}, decodeBusiness)
}

// ProfileBySubdomain looks a business up by its subdomain.
func (g *Gateway) ProfileBySubdomain(ctx context.Context, subdomain string) Result[models.Business] {
	key := strings.ToLower(strings.TrimSpace(subdomain))
	return lookup(ctx, g, OpProfileBySubdomain, key, func(ctx context.Context, key string) ([]byte, error) {
		b, err := g.store.BusinessBySubdomain(ctx, key)
		if err != nil {
			return nil, err
		}
		return json.Marshal(b)
	}, decodeBusiness)
}

// ThemeConfig fetches and validates the theme document of a tenant.
func (g *Gateway) ThemeConfig(ctx context.Context, tenantID string) Result[theme.Config] {
	return lookup(ctx, g, OpThemeConfig, strings.TrimSpace(tenantID), g.store.ThemeDocument, theme.Parse)
}

// LookupSubdomain adapts ProfileBySubdomain to tenant resolution.
func (g *Gateway) LookupSubdomain(ctx context.Context, subdomain string) (string, bool) {
	profile := g.ProfileBySubdomain(ctx, subdomain).OrNil()
	if profile == nil {
		return "", false
	}
	return profile.ID, true
}

// Invalidate drops every cached lookup that may reference the business.
func (g *Gateway) Invalidate(ctx context.Context, b models.Business) {
	g.cache.Invalidate(ctx, cacheKey(OpProfileByID, b.ID))
	g.cache.Invalidate(ctx, cacheKey(OpThemeConfig, b.ID))
	if b.Subdomain != nil {
		g.cache.Invalidate(ctx, cacheKey(OpProfileBySubdomain, strings.ToLower(*b.Subdomain)))
	}
}

// Purge drops all cached lookups, e.g. after reseeding.
func (g *Gateway) Purge() {
	g.cache.Purge()
}

func cacheKey(op, key string) string {
	return op + ":" + key
}

func lookup[T any](
	ctx context.Context,
	g *Gateway,
	op, key string,
	fetch func(context.Context, string) ([]byte, error),
	decode func([]byte) (*T, error),
) Result[T] {
	result := resolve(ctx, g, op, key, fetch, decode)
	metrics.RecordGatewayResult(op, result.Outcome())
	return result
}

func resolve[T any](
	ctx context.Context,
	g *Gateway,
	op, key string,
	fetch func(context.Context, string) ([]byte, error),
	decode func([]byte) (*T, error),
) Result[T] {
	if key == "" {
		return failed[T](KindNotFound, op, key, nil)
	}

	payload, ok, err := g.cache.Get(ctx, cacheKey(op, key), func(ctx context.Context) ([]byte, bool, error) {
		raw, err := fetch(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return raw, true, nil
	})
	if err != nil {
		applog.Error(ctx, "gateway lookup failed", "operation", op, "key", key, "error", err)
		return failed[T](KindTransport, op, key, err)
	}
	if !ok {
		applog.Debug(ctx, "gateway lookup found nothing", "operation", op, "key", key)
		return failed[T](KindNotFound, op, key, nil)
	}

	value, err := decode(payload)
	if err != nil {
		var verr *theme.ValidationError
		if errors.As(err, &verr) {
			applog.Warn(ctx, "discarding invalid document", "operation", op, "key", key, "issues", strings.Join(verr.Issues, "; "))
		} else {
			applog.Warn(ctx, "discarding undecodable document", "operation", op, "key", key, "error", err)
		}
		return failed[T](KindInvalid, op, key, err)
	}
	if value == nil {
		return failed[T](KindNotFound, op, key, nil)
	}
	return found(value)
}

func decodeBusiness(raw []byte) (*models.Business, error) {
	var b models.Business
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
