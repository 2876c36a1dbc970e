// Package cache is the query cache in front of the tenant data backend.
//
// Entries are fresh for StaleTime. A stale entry triggers a refetch; if the
// refetch fails the stale entry is served. Entries are evicted GCTime after
// they were stored. Concurrent loads of one key share a single fetch.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	applog "vitrine/internal/log"
	"vitrine/internal/metrics"
)

// Shared is an optional second tier visible to every instance.
type Shared interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Loader fetches the payload for a key. found=false is a cacheable miss;
// a non-nil error is never cached.
type Loader func(ctx context.Context) (payload []byte, found bool, err error)

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
	Size      int
	Shared    Shared
	// Now drives freshness only. GCTime eviction runs on the wall clock.
	Now       func() time.Time
}

type entry struct {
	Payload   []byte    `json:"payload,omitempty"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache memoizes loader results per key.
type Cache struct {
	stale  time.Duration
	gc     time.Duration
	now    func() time.Time
	local  *expirable.LRU[string, entry]
	shared Shared
	group  singleflight.Group
}

// New builds a Cache.
func New(opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 5 * time.Minute
	}
	if opts.GCTime < opts.StaleTime {
		opts.GCTime = 2 * opts.StaleTime
	}
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		stale:  opts.StaleTime,
		gc:     opts.GCTime,
		now:    opts.Now,
		local:  expirable.NewLRU[string, entry](opts.Size, nil, opts.GCTime),
		shared: opts.Shared,
	}
}

// Get returns the cached payload for key, loading it when missing or stale.
func (c *Cache) Get(ctx context.Context, key string, load Loader) ([]byte, bool, error) {
	if e, ok := c.local.Get(key); ok {
		if c.fresh(e) {
			metrics.RecordCacheLookup("hit")
			return e.Payload, e.Found, nil
		}
		refreshed, err := c.fetch(ctx, key, load)
		if err != nil {
			applog.Warn(ctx, "serving stale cache entry after failed refetch", "key", key, "error", err)
			metrics.RecordCacheLookup("stale")
			return e.Payload, e.Found, nil
		}
		return refreshed.Payload, refreshed.Found, nil
	}

	e, err := c.fetch(ctx, key, load)
	if err != nil {
		return nil, false, err
	}
	return e.Payload, e.Found, nil
}

// Invalidate drops key from both tiers.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.local.Remove(key)
	if c.shared == nil {
		return
	}
	if err := c.shared.Delete(ctx, key); err != nil {
		applog.Warn(ctx, "failed to invalidate shared cache entry", "key", key, "error", err)
	}
}

// Purge empties the local tier. Shared entries age out on their own.
func (c *Cache) Purge() {
	c.local.Purge()
}

// Len reports the number of locally cached entries.
func (c *Cache) Len() int {
	return c.local.Len()
}

func (c *Cache) fresh(e entry) bool {
	return c.now().Sub(e.FetchedAt) < c.stale
}

func (c *Cache) fetch(ctx context.Context, key string, load Loader) (entry, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		// shared by every waiting caller, so one caller's cancellation must not fail the rest
		fctx := context.WithoutCancel(ctx)

		if e, ok := c.readShared(fctx, key); ok && c.fresh(e) {
			c.local.Add(key, e)
			metrics.RecordCacheLookup("shared")
			return e, nil
		}

		payload, found, err := load(fctx)
		if err != nil {
			return entry{}, err
		}
		e := entry{Payload: payload, Found: found, FetchedAt: c.now()}
		c.local.Add(key, e)
		c.writeShared(fctx, key, e)
		metrics.RecordCacheLookup("miss")
		return e, nil
	})
	if err != nil {
		return entry{}, err
	}
	return v.(entry), nil
}

func (c *Cache) readShared(ctx context.Context, key string) (entry, bool) {
	if c.shared == nil {
		return entry{}, false
	}
	raw, ok, err := c.shared.Get(ctx, key)
	if err != nil {
		applog.Warn(ctx, "shared cache read failed", "key", key, "error", err)
		return entry{}, false
	}
	if !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		applog.Warn(ctx, "discarding undecodable shared cache entry", "key", key, "error", err)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) writeShared(ctx context.Context, key string, e entry) {
	if c.shared == nil {
		return
	}
	raw, err := json.Marshal(e)
	if err != nil {
		applog.Warn(ctx, "failed to encode shared cache entry", "key", key, "error", err)
		return
	}
	if err := c.shared.Set(ctx, key, raw, c.gc); err != nil {
		applog.Warn(ctx, "shared cache write failed", "key", key, "error", err)
	}
}
