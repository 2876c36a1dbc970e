package storefront

import (
	"context"
	"sync"

	applog "vitrine/internal/log"
	"vitrine/internal/tenant"
)

type navigation struct {
	seq    uint64
	change tenant.Change
}

type outcome struct {
	seq  uint64
	snap *Snapshot
}

// Session follows one visitor across navigations. Every subdomain change
// starts a load; a load finishing after a newer navigation is discarded.
type Session struct {
	loader *Loader
	nav    *tenant.Navigator

	pendingMu sync.Mutex
	changes   chan tenant.Change
	unsub     func()

	mu      sync.RWMutex
	current *Snapshot
	nextSub int
	subs    map[int]func(*Snapshot)
}

// NewSession subscribes a session to nav. Run must be called to process
// navigations.
func NewSession(loader *Loader, nav *tenant.Navigator) *Session {
	s := &Session{
		loader:  loader,
		nav:     nav,
		changes: make(chan tenant.Change, 1),
		subs:    make(map[int]func(*Snapshot)),
	}
	s.unsub = nav.Subscribe(s.enqueue)
	return s
}

// enqueue replaces any pending navigation with c. It never blocks, whether
// or not Run is processing.
func (s *Session) enqueue(c tenant.Change) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	select {
	case old := <-s.changes:
		applog.Debug(context.Background(), "replacing pending navigation", "host", old.Hostname, "next", c.Hostname)
	default:
	}
	s.changes <- c
}

// Navigate reports a route change to the session's navigator.
func (s *Session) Navigate(host string) bool {
	return s.nav.Navigate(host)
}

// Current returns the latest accepted snapshot, nil before the first one.
func (s *Session) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for every accepted snapshot. fn runs on the Run
// goroutine.
func (s *Session) Subscribe(fn func(*Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Run processes navigations until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.unsub()

	results := make(chan outcome)
	var (
		latest uint64
		wg     sync.WaitGroup
	)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-s.changes:
			latest++
			nav := navigation{seq: latest, change: c}
			wg.Add(1)
			go func() {
				defer wg.Done()
				snap := s.loader.Load(ctx, Request{Host: nav.change.Hostname})
				select {
				case results <- outcome{seq: nav.seq, snap: snap}:
				case <-ctx.Done():
				}
			}()

		case res := <-results:
			if res.seq != latest {
				applog.Debug(ctx, "discarding superseded storefront load", "host", res.snap.Host, "seq", res.seq, "latest", latest)
				continue
			}
			s.publish(res.snap)
		}
	}
}

func (s *Session) publish(snap *Snapshot) {
	s.mu.Lock()
	s.current = snap
	subs := make([]func(*Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Settle navigates to host and waits for the snapshot of its tenant. When
// the navigation does not change the subdomain the current snapshot is
// returned.
func (s *Session) Settle(ctx context.Context, host string) (*Snapshot, error) {
	want := s.loader.Resolver().ResolveSubdomain(host)
	settled := make(chan *Snapshot, 1)
	unsubscribe := s.Subscribe(func(snap *Snapshot) {
		if !equalSubdomain(snap.Identity.Subdomain, want) {
			return
		}
		select {
		case settled <- snap:
		default:
		}
	})
	defer unsubscribe()

	if !s.Navigate(host) {
		if cur := s.Current(); cur != nil && equalSubdomain(cur.Identity.Subdomain, want) {
			return cur, nil
		}
	}

	select {
	case snap := <-settled:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func equalSubdomain(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
