// Package tenant maps request hostnames onto storefront tenants.
package tenant

import (
	"context"
	"net"
	"strings"
)

// Identity is the tenant resolved for one page load.
type Identity struct {
	// Subdomain is the tenant signal found in the hostname, nil when there was none.
	Subdomain *string
	// TenantID is the business the page renders, possibly the configured default.
	TenantID string
}

// HasSubdomain reports whether the hostname carried a tenant signal.
func (i Identity) HasSubdomain() bool {
	return i.Subdomain != nil
}

// SubdomainOr returns the subdomain or fallback when absent.
func (i Identity) SubdomainOr(fallback string) string {
	if i.Subdomain == nil {
		return fallback
	}
	return *i.Subdomain
}

// DefaultPreviewSuffixes lists hosting platforms whose preview hostnames carry
// no tenant signal in their first label.
var DefaultPreviewSuffixes = []string{
	".vercel.app",
	".netlify.app",
	".pages.dev",
	".lovable.app",
	".lovableproject.com",
}

// LookupFunc resolves a subdomain to a tenant id. ok is false when the
// subdomain is unknown or the lookup failed.
type LookupFunc func(ctx context.Context, subdomain string) (id string, ok bool)

// Resolver derives tenant identities from hostnames.
type Resolver struct {
	defaultID       string
	previewSuffixes []string
}

// NewResolver builds a Resolver. Hosts ending in any preview suffix carry no
// tenant signal; an empty list selects DefaultPreviewSuffixes.
func NewResolver(defaultID string, previewSuffixes []string) *Resolver {
	if len(previewSuffixes) == 0 {
		previewSuffixes = DefaultPreviewSuffixes
	}
	suffixes := make([]string, 0, len(previewSuffixes))
	for _, s := range previewSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		suffixes = append(suffixes, s)
	}
	return &Resolver{defaultID: strings.TrimSpace(defaultID), previewSuffixes: suffixes}
}

// DefaultID returns the fallback tenant id.
func (r *Resolver) DefaultID() string {
	return r.defaultID
}

// ResolveSubdomain applies the hostname rules with the resolver's preview
// suffixes.
func (r *Resolver) ResolveSubdomain(hostname string) *string {
	return resolve(hostname, r.previewSuffixes)
}

// Identify resolves hostname to an Identity. The lookup is only consulted
// when a subdomain is present; any miss falls back to the default id.
func (r *Resolver) Identify(ctx context.Context, hostname string, lookup LookupFunc) Identity {
	return r.identify(ctx, r.ResolveSubdomain(hostname), lookup)
}

// IdentifySubdomain is Identify for a subdomain obtained elsewhere, such as
// the development ?tenant= override.
func (r *Resolver) IdentifySubdomain(ctx context.Context, subdomain string, lookup LookupFunc) Identity {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return Identity{TenantID: r.defaultID}
	}
	return r.identify(ctx, &subdomain, lookup)
}

func (r *Resolver) identify(ctx context.Context, sub *string, lookup LookupFunc) Identity {
	id := Identity{Subdomain: sub, TenantID: r.defaultID}
	if sub == nil || lookup == nil {
		return id
	}
	if tenantID, ok := lookup(ctx, *sub); ok && tenantID != "" {
		id.TenantID = tenantID
	}
	return id
}

// ResolveSubdomain extracts the tenant subdomain from hostname: nil for
// local hosts, preview-platform hosts, apex domains and www; otherwise the
// lower-cased first label.
func ResolveSubdomain(hostname string) *string {
	return resolve(hostname, DefaultPreviewSuffixes)
}

func resolve(hostname string, previewSuffixes []string) *string {
	host := strings.ToLower(strings.TrimSpace(stripPort(hostname)))
	host = strings.TrimSuffix(host, ".")
	if host == "" || isLocal(host) {
		return nil
	}
	for _, suffix := range previewSuffixes {
		if strings.HasSuffix(host, suffix) {
			return nil
		}
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return nil
	}
	first := strings.TrimSpace(labels[0])
	if first == "" || first == "www" {
		return nil
	}
	return &first
}

// isLocal covers localhost names and every IP literal; an address has no
// subdomain even when it has four dot-separated labels.
func isLocal(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}

func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
