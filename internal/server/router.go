package server

import (
	"context"
	"net/http"

	"vitrine/internal/handlers"
	applog "vitrine/internal/log"
	"vitrine/internal/metrics"
	"vitrine/internal/views/meta"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.Handle("/metrics", metrics.Handler())
	applog.Debug(context.Background(), "route registered", "path", "/metrics")
	mux.HandleFunc("/theme.css", handlers.ThemeCSS)
	applog.Debug(context.Background(), "route registered", "path", "/theme.css")
	mux.HandleFunc(meta.ManifestPath, handlers.Manifest)
	applog.Debug(context.Background(), "route registered", "path", meta.ManifestPath)
	mux.HandleFunc("/preferences/color-scheme", handlers.UpdateColorScheme)
	applog.Debug(context.Background(), "route registered", "path", "/preferences/color-scheme")
	mux.HandleFunc("/", handlers.Home)
	applog.Debug(context.Background(), "route registered", "path", "/")
	return mux
}
