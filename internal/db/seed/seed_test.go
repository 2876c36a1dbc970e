package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vitrine/internal/db"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

const fixture = `
[[tenant]]
name = "Acme Goods"
description = "Everything for everyone"
subdomain = "Acme"
phone = "+1 555 0100"

[tenant.theme.colors.customPalette.primary]
"500" = "220 80% 50%"

[[tenant]]
id = "00000000-0000-4000-8000-000000000002"
name = "Plain Provisions"
subdomain = "plain"
`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestParse(t *testing.T) {
	t.Parallel()

	fx, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}
	if len(fx.Tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %d", len(fx.Tenants))
	}

	doc, err := fx.Tenants[0].ThemeJSON()
	if err != nil {
		t.Fatalf("ThemeJSON(): %v", err)
	}
	cfg, err := theme.Parse(doc)
	if err != nil || cfg == nil {
		t.Fatalf("theme.Parse(%s) = %v, %v", doc, cfg, err)
	}
	if got := cfg.Palettes()["primary"]["500"]; got != "220 80% 50%" {
		t.Fatalf("primary 500 = %q", got)
	}

	if doc, _ := fx.Tenants[1].ThemeJSON(); doc != nil {
		t.Fatalf("expected no theme document, got %s", doc)
	}
}

func TestParseRejectsBadFixtures(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing name":       "[[tenant]]\nsubdomain = \"x\"\n",
		"duplicate":          "[[tenant]]\nname = \"A\"\nsubdomain = \"x\"\n[[tenant]]\nname = \"B\"\nsubdomain = \"X\"\n",
		"unknown key":        "[[tenant]]\nname = \"A\"\ncolour = \"red\"\n",
		"invalid theme":      "[[tenant]]\nname = \"A\"\n[tenant.theme.spacing]\nsm = \"1rem; }\"\n",
		"malformed document": "[[tenant]\nname = ",
	}
	for name, doc := range tests {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestApplyIsAnUpsert(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	ctx := context.Background()
	fx, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse(): %v", err)
	}

	summary, err := Apply(ctx, conn, fx)
	if err != nil {
		t.Fatalf("Apply(): %v", err)
	}
	if summary.Created != 2 || summary.Updated != 0 || summary.Themes != 1 {
		t.Fatalf("first apply summary = %+v", summary)
	}

	var acme models.Business
	if err := conn.Where("subdomain = ?", "acme").Take(&acme).Error; err != nil {
		t.Fatalf("find acme: %v", err)
	}
	if acme.Phone == nil || *acme.Phone != "+1 555 0100" || acme.Address != nil {
		t.Fatalf("unexpected contact fields: %+v", acme)
	}

	fx.Tenants[0].Description = "Now with rockets"
	fx.Tenants[0].Theme = nil
	summary, err = Apply(ctx, conn, fx)
	if err != nil {
		t.Fatalf("second Apply(): %v", err)
	}
	if summary.Created != 0 || summary.Updated != 2 || summary.Themes != 0 {
		t.Fatalf("second apply summary = %+v", summary)
	}

	var count int64
	conn.Model(&models.Business{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 businesses after re-apply, got %d", count)
	}
	conn.Model(&models.BusinessTheme{}).Where("business_id = ?", acme.ID).Count(&count)
	if count != 0 {
		t.Fatal("expected theme removed when the fixture drops it")
	}
	var reloaded models.Business
	conn.Where("id = ?", acme.ID).Take(&reloaded)
	if reloaded.Description != "Now with rockets" {
		t.Fatalf("description = %q", reloaded.Description)
	}
}

func TestApplyRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := Apply(context.Background(), nil, &Fixture{}); err == nil {
		t.Fatal("expected error for nil database")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tenants.toml")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatchReportsWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tenants.toml")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o600)
	if err := os.WriteFile(path, []byte(fixture+"\n"), 0o600); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch(): %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
