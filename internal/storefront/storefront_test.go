package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vitrine/internal/db/mock"
	"vitrine/internal/gateway"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

func newMockLoader(t *testing.T, defaultID string) *Loader {
	t.Helper()

	conn, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	gw := gateway.New(gateway.NewGormStore(conn), nil)
	return NewLoader(tenant.NewResolver(defaultID, nil), gw, meta.NewSynchronizer(nil, meta.NewManifestRegistry()))
}

func property(t *testing.T, snap *Snapshot, name string) string {
	t.Helper()
	v, ok := snap.Scope.Property(name)
	if !ok {
		t.Fatalf("property %s not set", name)
	}
	return v
}

func TestLoadProjectsTenantTheme(t *testing.T) {
	t.Parallel()

	loader := newMockLoader(t, "")
	var transitions []Transition
	loader.Observe(func(tr Transition) { transitions = append(transitions, tr) })

	snap := loader.Load(context.Background(), Request{Host: "acme.mystore.app"})

	if snap.State != StateReady {
		t.Fatalf("state = %s, want ready", snap.State)
	}
	if snap.Identity.SubdomainOr("") != "acme" || snap.Identity.TenantID != mock.AcmeID {
		t.Fatalf("identity = %+v", snap.Identity)
	}
	if snap.Profile.Name != "Acme Goods" {
		t.Fatalf("profile name = %q", snap.Profile.Name)
	}
	for _, name := range []string{"--color-primary-500", "--color-primary", "--color-primary-950"} {
		if got := property(t, snap, name); got != "220 80% 50%" {
			t.Fatalf("%s = %q, want 220 80%% 50%%", name, got)
		}
	}
	if snap.Head.Title != "Acme Goods: Everything for everyone" {
		t.Fatalf("title = %q", snap.Head.Title)
	}
	if _, version, ok := snap.Manifest(); !ok || version == "" {
		t.Fatal("expected manifest link on head")
	}

	want := []State{StateResolvingTenant, StateFetchingProfileAndTheme, StateReady}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %+v", transitions)
	}
	for i, tr := range transitions {
		if tr.To != want[i] {
			t.Fatalf("transition %d to %s, want %s", i, tr.To, want[i])
		}
	}
	if transitions[0].From != StateIdle {
		t.Fatalf("first transition from %s, want idle", transitions[0].From)
	}
}

func TestLoadWithoutThemeKeepsDefaults(t *testing.T) {
	t.Parallel()

	loader := newMockLoader(t, "")
	snap := loader.Load(context.Background(), Request{Host: "plain.mystore.app"})

	if snap.State != StateReady || snap.Theme != nil {
		t.Fatalf("state = %s, theme = %+v", snap.State, snap.Theme)
	}
	if snap.ThemeErr == nil || snap.ThemeErr.Kind != gateway.KindNotFound {
		t.Fatalf("theme err = %v", snap.ThemeErr)
	}

	defaults := theme.Project(nil).Properties()
	got := snap.Scope.Properties()
	if len(got) != len(defaults) {
		t.Fatalf("expected only default tokens, got %d vs %d", len(got), len(defaults))
	}
	for k, v := range defaults {
		if got[k] != v {
			t.Fatalf("%s = %q, want default %q", k, got[k], v)
		}
	}
	if snap.Head.Title != "Plain Provisions: Pantry staples without the fuss" {
		t.Fatalf("title = %q", snap.Head.Title)
	}
}

func TestLoadUnknownTenantFallsBackToDefaultProfile(t *testing.T) {
	t.Parallel()

	loader := newMockLoader(t, "")
	snap := loader.Load(context.Background(), Request{Host: "ghost.mystore.app"})

	if snap.State != StateDegraded {
		t.Fatalf("state = %s, want degraded", snap.State)
	}
	def := DefaultProfile()
	if snap.Head.Title != def.Name+": "+def.Description {
		t.Fatalf("title = %q", snap.Head.Title)
	}
	if got := property(t, snap, "--color-primary-500"); got != theme.PrimaryColor(theme.Default()) {
		t.Fatalf("primary = %q, want default", got)
	}
}

func TestLoadUsesDefaultTenantAndOverride(t *testing.T) {
	t.Parallel()

	loader := newMockLoader(t, mock.BloomID)
	ctx := context.Background()

	local := loader.Load(ctx, Request{Host: "localhost:8080"})
	if local.Identity.TenantID != mock.BloomID || local.Profile.Name != "Bloom & Co" {
		t.Fatalf("localhost should serve the default tenant, got %+v", local.Identity)
	}
	if _, ok := local.Scope.StyleBlock(theme.DarkStyleID); !ok {
		t.Fatal("expected dark style block for bloom")
	}
	if got := property(t, local, "--color-primary-50"); got != "340 80% 92%" {
		t.Fatalf("--color-primary-50 = %q", got)
	}

	override := loader.Load(ctx, Request{Host: "localhost:8080", Subdomain: "acme"})
	if override.Identity.TenantID != mock.AcmeID {
		t.Fatalf("override identity = %+v", override.Identity)
	}
}

type fakeStore struct {
	mu         sync.Mutex
	calls      []string
	businesses map[string]*models.Business
	themes     map[string]string
	gates      map[string]chan struct{}
	err        error
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStore) BusinessByID(_ context.Context, id string) (*models.Business, error) {
	f.record("id:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (f *fakeStore) BusinessBySubdomain(_ context.Context, sub string) (*models.Business, error) {
	f.record("sub:" + sub)
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.businesses[sub]; ok {
		return b, nil
	}
	return nil, gateway.ErrNotFound
}

func (f *fakeStore) ThemeDocument(_ context.Context, id string) ([]byte, error) {
	f.record("theme:" + id)
	if gate, ok := f.gates[id]; ok {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if doc, ok := f.themes[id]; ok {
		return []byte(doc), nil
	}
	return nil, gateway.ErrNotFound
}

func newFakeStore() *fakeStore {
	sub := func(s string) *string { return &s }
	return &fakeStore{
		businesses: map[string]*models.Business{
			"acme":  {ID: "acme-id", Name: "Acme Goods", Subdomain: sub("acme")},
			"bloom": {ID: "bloom-id", Name: "Bloom & Co", Subdomain: sub("bloom")},
		},
		themes: map[string]string{
			"acme-id":  `{"colors":{"customPalette":{"primary":{"500":"220 80% 50%"}}}}`,
			"bloom-id": `{"colors":{"customPalette":{"primary":{"500":"340 70% 45%"}}}}`,
		},
		gates: map[string]chan struct{}{},
	}
}

func TestLoadFetchesOnlyAfterResolution(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	loader := NewLoader(tenant.NewResolver("default-id", nil), gateway.New(store, nil), nil)
	loader.Load(context.Background(), Request{Host: "acme.mystore.app"})

	if len(store.calls) != 3 || store.calls[0] != "sub:acme" {
		t.Fatalf("calls = %v", store.calls)
	}
	for _, call := range store.calls[1:] {
		if call != "id:acme-id" && call != "theme:acme-id" {
			t.Fatalf("fetch issued against %q before the tenant was resolved", call)
		}
	}
}

func TestLoadDegradesOnTransportFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errors.New("connection reset by peer")
	loader := NewLoader(tenant.NewResolver("default-id", nil), gateway.New(store, nil), nil)

	snap := loader.Load(context.Background(), Request{Host: "acme.mystore.app"})
	if snap.State != StateDegraded {
		t.Fatalf("state = %s, want degraded", snap.State)
	}
	if snap.ProfileErr == nil || snap.ProfileErr.Kind != gateway.KindTransport {
		t.Fatalf("profile err = %v", snap.ProfileErr)
	}
	if snap.Profile.Name != DefaultProfile().Name || snap.Head.Title == "" {
		t.Fatalf("expected default profile, got %+v", snap.Profile)
	}
}

func TestSessionDiscardsSupersededLoads(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	gate := make(chan struct{})
	store.gates["acme-id"] = gate

	resolver := tenant.NewResolver("", nil)
	loader := NewLoader(resolver, gateway.New(store, nil), nil)
	session := NewSession(loader, tenant.NewNavigator(resolver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = session.Run(ctx)
		close(done)
	}()

	var (
		mu        sync.Mutex
		published []string
	)
	session.Subscribe(func(s *Snapshot) {
		mu.Lock()
		published = append(published, s.Profile.Name)
		mu.Unlock()
	})

	session.Navigate("acme.mystore.app")
	snap, err := session.Settle(ctx, "bloom.mystore.app")
	if err != nil {
		t.Fatalf("Settle(): %v", err)
	}
	if snap.Profile.Name != "Bloom & Co" {
		t.Fatalf("settled on %q", snap.Profile.Name)
	}

	close(gate)
	time.Sleep(50 * time.Millisecond)

	if cur := session.Current(); cur == nil || cur.Profile.Name != "Bloom & Co" {
		t.Fatalf("current = %+v, want bloom", cur)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(published) != 1 {
		t.Fatalf("published = %v, want only bloom", published)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}
}

func TestSessionSettleOnUnchangedSubdomain(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver("", nil)
	loader := NewLoader(resolver, gateway.New(newFakeStore(), nil), nil)
	session := NewSession(loader, tenant.NewNavigator(resolver))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = session.Run(ctx) }()

	first, err := session.Settle(ctx, "acme.mystore.app")
	if err != nil {
		t.Fatalf("first Settle(): %v", err)
	}
	second, err := session.Settle(ctx, "ACME.mystore.app:443")
	if err != nil {
		t.Fatalf("second Settle(): %v", err)
	}
	if first != second {
		t.Fatal("expected the current snapshot when the subdomain does not change")
	}
}

func TestSessionNavigateDoesNotBlockBeforeRun(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver("", nil)
	loader := NewLoader(resolver, gateway.New(newFakeStore(), nil), nil)
	session := NewSession(loader, tenant.NewNavigator(resolver))

	navigated := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			session.Navigate("acme.mystore.app")
			session.Navigate("bloom.mystore.app")
		}
		close(navigated)
	}()
	select {
	case <-navigated:
	case <-time.After(2 * time.Second):
		t.Fatal("Navigate blocked without a running session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = session.Run(ctx) }()

	snap, err := session.Settle(ctx, "bloom.mystore.app")
	if err != nil {
		t.Fatalf("Settle(): %v", err)
	}
	if snap.Profile.Name != "Bloom & Co" {
		t.Fatalf("settled on %q, want the latest navigation", snap.Profile.Name)
	}
}
