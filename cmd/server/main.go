package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vitrine/internal/cache"
	"vitrine/internal/config"
	"vitrine/internal/db"
	"vitrine/internal/db/mock"
	"vitrine/internal/db/seed"
	"vitrine/internal/gateway"
	applog "vitrine/internal/log"
	"vitrine/internal/server"
	"vitrine/internal/storefront"
	"vitrine/internal/supabase"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

// backend is a tenant store that can report its own reachability.
type backend interface {
	gateway.Store
	Ping(ctx context.Context) error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newSupabaseStore    = func(cfg config.SupabaseConfig) backend { return supabase.New(cfg) }
	dialRedisFunc       = cache.DialRedis
	watchSeedFunc       = seed.Watch
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		return sigCh, func() { signal.Stop(sigCh) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}
	defer func() { _ = applog.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, database, err := openBackend(ctx, cfg)
	if err != nil {
		applog.Error(ctx, "failed to open data backend", "error", err)
		return 1
	}

	seedFile := strings.TrimSpace(cfg.Database.SeedFile)
	if database != nil && seedFile != "" {
		if err := applySeed(ctx, database, seedFile); err != nil {
			applog.Error(ctx, "failed to apply seed file", "path", seedFile, "error", err)
			return 1
		}
	}

	queryCache, closeCache := newQueryCache(ctx, cfg.Cache)
	defer closeCache()
	gw := gateway.New(store, queryCache)

	if database != nil && seedFile != "" && cfg.Development() {
		go func() {
			err := watchSeedFunc(ctx, seedFile, func() {
				if err := applySeed(ctx, database, seedFile); err != nil {
					applog.Warn(ctx, "seed reload failed", "path", seedFile, "error", err)
					return
				}
				gw.Purge()
			})
			if err != nil {
				applog.Warn(ctx, "seed watcher stopped", "path", seedFile, "error", err)
			}
		}()
	}

	registry := meta.NewManifestRegistry()
	loader := storefront.NewLoader(
		tenant.NewResolver(cfg.Tenant.DefaultID, cfg.Tenant.PreviewSuffixes),
		gw,
		meta.NewSynchronizer(meta.NewLogoEncoder(cfg.Assets), registry),
	)
	loader.Observe(storefront.RecordMetrics)

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Loader:      loader,
		Manifests:   registry,
		Ping:        store.Ping,
		Development: cfg.Development(),
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	sigCh, stopSignals := subscribeShutdownSig()
	defer stopSignals()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "environment", cfg.Environment)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	return 0
}

// openBackend picks the tenant data source: Supabase first, then the
// configured database, then the in-memory mock.
func openBackend(ctx context.Context, cfg config.Config) (backend, *gorm.DB, error) {
	if cfg.Supabase.Enabled() {
		applog.Info(ctx, "using supabase backend", "url", cfg.Supabase.URL)
		return newSupabaseStore(cfg.Supabase), nil, nil
	}

	var (
		database *gorm.DB
		err      error
	)
	if cfg.Database.UseMock {
		applog.Info(ctx, "using mock database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		return nil, nil, err
	}
	return gateway.NewGormStore(database), database, nil
}

func applySeed(ctx context.Context, database *gorm.DB, path string) error {
	fx, err := seed.Load(path)
	if err != nil {
		return err
	}
	summary, err := seed.Apply(ctx, database, fx)
	if err != nil {
		return err
	}
	applog.Info(ctx, "seed applied", "path", path, "created", summary.Created, "updated", summary.Updated, "themes", summary.Themes)
	return nil
}

// newQueryCache builds the gateway cache. An unreachable Redis leaves the
// cache local to this instance.
func newQueryCache(ctx context.Context, cfg config.CacheConfig) (*cache.Cache, func()) {
	opts := cache.Options{
		StaleTime: cfg.StaleTime,
		GCTime:    cfg.GCTime,
		Size:      cfg.Size,
	}
	closer := func() {}

	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		client, err := dialRedisFunc(ctx, url)
		if err != nil {
			applog.Warn(ctx, "redis unavailable, using local cache only", "error", err)
		} else {
			opts.Shared = cache.NewRedisStore(client, "vitrine:")
			closer = func() { closeRedis(ctx, client) }
		}
	}
	return cache.New(opts), closer
}

func closeRedis(ctx context.Context, client *redis.Client) {
	if err := client.Close(); err != nil {
		applog.Warn(ctx, "failed to close redis client", "error", err)
	}
}
