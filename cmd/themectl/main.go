// Command themectl previews how hostnames resolve to tenants and prints the
// resulting page title and design tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"vitrine/internal/config"
	"vitrine/internal/db"
	"vitrine/internal/db/mock"
	"vitrine/internal/gateway"
	applog "vitrine/internal/log"
	"vitrine/internal/storefront"
	"vitrine/internal/supabase"
	"vitrine/internal/tenant"
	"vitrine/internal/views/meta"
)

var loadConfigFunc = config.Load

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("themectl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	useMock := flags.Bool("mock", false, "Resolve against the built-in fixture tenants instead of the configured backend")
	defaultID := flags.String("default", "", "Tenant id used when a hostname has no subdomain (defaults to TENANT_DEFAULT_ID)")
	showCSS := flags.Bool("css", true, "Print the resolved token CSS")
	embedLogos := flags.Bool("logos", false, "Fetch and embed tenant logos as data URIs")
	timeout := flags.Duration("timeout", 10*time.Second, "Maximum time to wait for each hostname")
	logLevel := flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: themectl [flags] <hostname>...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}
	if err := applog.SetLevel(*logLevel); err != nil {
		fmt.Fprintf(stderr, "themectl: %v\n", err)
		return 2
	}

	store, cfg, err := openStore(ctx, *useMock)
	if err != nil {
		fmt.Fprintf(stderr, "themectl: %v\n", err)
		return 1
	}
	if *defaultID == "" {
		*defaultID = cfg.Tenant.DefaultID
	}

	var logos *meta.LogoEncoder
	if *embedLogos {
		logos = meta.NewLogoEncoder(cfg.Assets)
	}
	loader := storefront.NewLoader(
		tenant.NewResolver(*defaultID, cfg.Tenant.PreviewSuffixes),
		gateway.New(store, nil),
		meta.NewSynchronizer(logos, meta.NewManifestRegistry()),
	)

	resolver := loader.Resolver()
	session := storefront.NewSession(loader, tenant.NewNavigator(resolver))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = session.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	code := 0
	for _, host := range flags.Args() {
		hostCtx, hostCancel := context.WithTimeout(ctx, *timeout)
		snap, err := session.Settle(hostCtx, host)
		hostCancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("timed out after %s", *timeout)
			}
			fmt.Fprintf(stderr, "themectl: %s: %v\n", host, err)
			code = 1
			continue
		}
		printSnapshot(stdout, host, snap, *showCSS)
		if snap.State == storefront.StateDegraded {
			code = 1
		}
	}
	return code
}

func openStore(ctx context.Context, useMock bool) (gateway.Store, config.Config, error) {
	if useMock {
		conn, err := mock.New(ctx)
		if err != nil {
			return nil, config.Config{}, fmt.Errorf("open mock database: %w", err)
		}
		return gateway.NewGormStore(conn), config.Config{}, nil
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Supabase.Enabled() {
		return supabase.New(cfg.Supabase), cfg, nil
	}
	if cfg.Database.UseMock {
		conn, err := mock.New(ctx)
		if err != nil {
			return nil, cfg, fmt.Errorf("open mock database: %w", err)
		}
		return gateway.NewGormStore(conn), cfg, nil
	}
	conn, err := db.Initialize(cfg.Database)
	if err != nil {
		return nil, cfg, err
	}
	return gateway.NewGormStore(conn), cfg, nil
}

func printSnapshot(w io.Writer, host string, snap *storefront.Snapshot, showCSS bool) {
	tenantID := snap.Identity.TenantID
	if tenantID == "" {
		tenantID = "-"
	}

	fmt.Fprintf(w, "%s\n", host)
	fmt.Fprintf(w, "  state:     %s\n", snap.State)
	fmt.Fprintf(w, "  subdomain: %s\n", snap.Identity.SubdomainOr("-"))
	fmt.Fprintf(w, "  tenant:    %s\n", tenantID)
	if snap.Head != nil {
		fmt.Fprintf(w, "  title:     %s\n", snap.Head.Title)
	}
	if snap.ProfileErr != nil {
		fmt.Fprintf(w, "  profile:   %s\n", snap.ProfileErr)
	}
	if snap.ThemeErr != nil {
		fmt.Fprintf(w, "  theme:     %s\n", snap.ThemeErr.Kind)
	}
	if showCSS && snap.Scope != nil {
		fmt.Fprintln(w)
		fmt.Fprint(w, snap.Scope.CSS())
	}
	fmt.Fprintln(w)
}
