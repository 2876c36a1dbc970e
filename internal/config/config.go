package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvDevelopment enables developer conveniences such as the ?tenant= override.
	EnvDevelopment = "development"
	// EnvProduction is the default environment.
	EnvProduction = "production"
)

// ErrNoBackend is returned when no data backend has been configured.
var ErrNoBackend = errors.New("no data backend configured: set SUPABASE_URL, DATABASE_URL or DATABASE_USE_MOCK")

// Config captures the runtime configuration for the application.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Supabase    SupabaseConfig
	Tenant      TenantConfig
	Cache       CacheConfig
	Assets      AssetsConfig
	Logging     LoggingConfig
	Session     SessionConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
	SeedFile        string
}

// SupabaseConfig points at a hosted PostgREST backend.
type SupabaseConfig struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Enabled reports whether the hosted backend should serve tenant data.
func (c SupabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// TenantConfig controls how hostnames map onto tenants. An empty
// PreviewSuffixes list selects the resolver's built-in platforms.
type TenantConfig struct {
	DefaultID       string
	PreviewSuffixes []string
}

// CacheConfig controls the query cache in front of the data backend.
type CacheConfig struct {
	StaleTime time.Duration
	GCTime    time.Duration
	Size      int
	RedisURL  string
}

// AssetsConfig bounds the logo re-encoding performed for icons and manifests.
type AssetsConfig struct {
	LogoFetchTimeout time.Duration
	LogoMaxBytes     int
}

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	Level string
}

// SessionConfig controls visitor preference sessions.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Development reports whether developer conveniences are enabled.
func (c Config) Development() bool {
	return c.Environment == EnvDevelopment
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	env := strings.ToLower(strings.TrimSpace(firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("GO_ENV"), EnvProduction)))
	switch env {
	case "dev":
		env = EnvDevelopment
	case "prod":
		env = EnvProduction
	}
	if env != EnvDevelopment && env != EnvProduction {
		return Config{}, fmt.Errorf("unknown APP_ENV %q", env)
	}
	cfg.Environment = env

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
		SeedFile:        strings.TrimSpace(os.Getenv("DATABASE_SEED_FILE")),
	}

	cfg.Supabase = SupabaseConfig{
		URL:     strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		AnonKey: firstNonEmpty(os.Getenv("SUPABASE_ANON_KEY"), os.Getenv("SUPABASE_KEY"), ""),
		Timeout: parseDurationWithDefault(os.Getenv("SUPABASE_TIMEOUT"), 10*time.Second),
	}

	cfg.Tenant = TenantConfig{
		DefaultID:       strings.TrimSpace(firstNonEmpty(os.Getenv("TENANT_DEFAULT_ID"), os.Getenv("DEFAULT_BUSINESS_ID"), "")),
		PreviewSuffixes: parseListWithDefault(os.Getenv("TENANT_PREVIEW_SUFFIXES"), nil),
	}

	cfg.Cache = CacheConfig{
		StaleTime: parseDurationWithDefault(os.Getenv("CACHE_STALE_TIME"), 5*time.Minute),
		GCTime:    parseDurationWithDefault(os.Getenv("CACHE_GC_TIME"), 10*time.Minute),
		Size:      parseIntWithDefault(os.Getenv("CACHE_SIZE"), 512),
		RedisURL:  strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	cfg.Assets = AssetsConfig{
		LogoFetchTimeout: parseDurationWithDefault(os.Getenv("LOGO_FETCH_TIMEOUT"), 5*time.Second),
		LogoMaxBytes:     parseIntWithDefault(os.Getenv("LOGO_MAX_BYTES"), 1<<20),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 30*24*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "vitrine_session"),
		CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	if cfg.Supabase.Enabled() && strings.TrimSpace(cfg.Supabase.AnonKey) == "" {
		return Config{}, fmt.Errorf("SUPABASE_ANON_KEY is required when SUPABASE_URL is set")
	}

	if !cfg.Supabase.Enabled() && !cfg.Database.UseMock && strings.TrimSpace(cfg.Database.URL) == "" {
		return Config{}, ErrNoBackend
	}

	if cfg.Cache.GCTime < cfg.Cache.StaleTime {
		return Config{}, fmt.Errorf("CACHE_GC_TIME (%s) must not be shorter than CACHE_STALE_TIME (%s)", cfg.Cache.GCTime, cfg.Cache.StaleTime)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseListWithDefault(value string, def []string) []string {
	if strings.TrimSpace(value) == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
