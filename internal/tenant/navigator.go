package tenant

import "sync"

// Change describes a navigation that moved to a different subdomain.
type Change struct {
	Hostname string
	Previous *string
	Current  *string
}

// Navigator tracks the subdomain of the current location. The hosting
// application calls Navigate on every route change; subscribers hear only
// about changes of the resolved subdomain.
type Navigator struct {
	resolver *Resolver

	mu          sync.Mutex
	initialized bool
	current     *string
	nextID      int
	subscribers map[int]func(Change)
}

// NewNavigator returns a Navigator resolving hostnames with resolver.
func NewNavigator(resolver *Resolver) *Navigator {
	return &Navigator{resolver: resolver, subscribers: make(map[int]func(Change))}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Navigator) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

// Current returns the subdomain of the last navigation.
func (n *Navigator) Current() *string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate recomputes the subdomain for hostname and notifies subscribers
// when it differs from the previous one. The first navigation always
// notifies. It reports whether a change was published.
func (n *Navigator) Navigate(hostname string) bool {
	next := n.resolver.ResolveSubdomain(hostname)

	n.mu.Lock()
	if n.initialized && sameSubdomain(n.current, next) {
		n.mu.Unlock()
		return false
	}
	change := Change{Hostname: hostname, Previous: n.current, Current: next}
	n.current = next
	n.initialized = true
	subs := make([]func(Change), 0, len(n.subscribers))
	for _, fn := range n.subscribers {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	return true
}

func sameSubdomain(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
