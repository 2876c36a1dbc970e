package storefront

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vitrine/internal/gateway"
	applog "vitrine/internal/log"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

// Request selects the tenant of a load. Subdomain, when set, overrides the
// hostname signal.
type Request struct {
	Host      string
	Subdomain string
}

// Loader runs the storefront pipeline once per request.
type Loader struct {
	resolver *tenant.Resolver
	gateway  *gateway.Gateway
	meta     *meta.Synchronizer
	now      func() time.Time

	mu        sync.RWMutex
	observers []Observer
}

// NewLoader wires a Loader. A nil synchronizer leaves heads empty apart
// from the title.
func NewLoader(resolver *tenant.Resolver, gw *gateway.Gateway, syncer *meta.Synchronizer) *Loader {
	return &Loader{resolver: resolver, gateway: gw, meta: syncer, now: time.Now}
}

// Resolver returns the tenant resolver used for hostnames.
func (l *Loader) Resolver() *tenant.Resolver {
	return l.resolver
}

// Observe registers fn for every state transition.
func (l *Loader) Observe(fn Observer) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Load resolves the tenant of req and assembles its snapshot. Failures
// degrade to defaults; Load never returns without a renderable snapshot.
func (l *Loader) Load(ctx context.Context, req Request) *Snapshot {
	start := l.now()
	snap := &Snapshot{Host: req.Host, State: StateIdle}
	ctx = applog.With(ctx, "host", req.Host)

	l.transition(snap, StateResolvingTenant, start)
	if override := strings.TrimSpace(req.Subdomain); override != "" {
		snap.Identity = l.resolver.IdentifySubdomain(ctx, override, l.gateway.LookupSubdomain)
	} else {
		snap.Identity = l.resolver.Identify(ctx, req.Host, l.gateway.LookupSubdomain)
	}

	// fetches start only once the tenant id is final
	ctx = applog.With(ctx, "tenant", snap.Identity.TenantID)
	l.transition(snap, StateFetchingProfileAndTheme, start)
	var (
		profile gateway.Result[models.Business]
		config  gateway.Result[theme.Config]
		g       errgroup.Group
	)
	g.Go(func() error {
		profile = l.gateway.ProfileByID(ctx, snap.Identity.TenantID)
		return nil
	})
	g.Go(func() error {
		config = l.gateway.ThemeConfig(ctx, snap.Identity.TenantID)
		return nil
	})
	_ = g.Wait()

	snap.ProfileErr, snap.ThemeErr = profile.Err, config.Err
	snap.Profile = profile.OrNil()
	if snap.Profile == nil {
		snap.Profile = DefaultProfile()
	}
	snap.Theme = config.OrNil()
	snap.Scope = theme.Project(snap.Theme)

	snap.Head = meta.NewHead()
	if l.meta != nil {
		l.meta.Sync(ctx, snap.Head, snap.Profile, snap.Theme)
	} else {
		snap.Head.Title = meta.Title(snap.Profile)
	}

	// a tenant without a theme is still ready; a missing profile is not
	final := StateReady
	if profile.Err != nil || degraded(config.Err) {
		final = StateDegraded
	}
	l.transition(snap, final, start)

	applog.Debug(ctx, "storefront loaded", "subdomain", snap.Identity.SubdomainOr(""), "state", final.String())
	return snap
}

// degraded reports failures other than a plain missing row.
func degraded(err *gateway.Error) bool {
	return err != nil && err.Kind != gateway.KindNotFound
}

func (l *Loader) transition(snap *Snapshot, to State, start time.Time) {
	t := Transition{From: snap.State, To: to, Identity: snap.Identity, Elapsed: l.now().Sub(start)}
	snap.State = to

	l.mu.RLock()
	observers := l.observers
	l.mu.RUnlock()
	for _, fn := range observers {
		fn(t)
	}
}
