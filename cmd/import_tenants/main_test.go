package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vitrine/internal/config"
	"vitrine/models"
)

const fixture = `
[[tenant]]
id = "0c5a3f7e-2b1d-4c8e-9f6a-7d3e2b1c0a95"
name = "Harbor Books"
description = "Secondhand and rare"
subdomain = "harbor"

[tenant.theme.colors.customPalette.primary]
"500" = "200 60% 40%"

[[tenant]]
id = "5e1b7c3a-9d2f-4a6e-8b0c-1f3a5d7e9b24"
name = "Kiln Studio"
subdomain = "kiln"
`

func stubDatabase(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tenants.db")
	originalLoad := loadConfigFunc
	originalOpen := openDatabaseFunc
	t.Cleanup(func() {
		loadConfigFunc = originalLoad
		openDatabaseFunc = originalOpen
	})

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{Database: config.DatabaseConfig{URL: dbPath}}, nil
	}
	return dbPath
}

func writeFixture(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenants.toml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunImportsTenantsIdempotently(t *testing.T) {
	dbPath := stubDatabase(t)
	path := writeFixture(t, fixture)

	var out bytes.Buffer
	if err := run(context.Background(), path, &out); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 2 tenants") || !strings.Contains(out.String(), "2 created") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), path, &out); err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out.String(), "0 created, 2 updated") {
		t.Fatalf("expected second import to update, got %q", out.String())
	}

	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	var businesses, themes int64
	conn.Model(&models.Business{}).Count(&businesses)
	conn.Model(&models.BusinessTheme{}).Count(&themes)
	if businesses != 2 || themes != 1 {
		t.Fatalf("expected 2 businesses and 1 theme, got %d and %d", businesses, themes)
	}
}

func TestRunRejectsBrokenFixtureBeforeConnecting(t *testing.T) {
	stubDatabase(t)
	openDatabaseFunc = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("database should not be opened for an invalid fixture")
		return nil, nil
	}

	path := writeFixture(t, "[[tenant]]\nsubdomain = \"nameless\"\n")
	if err := run(context.Background(), path, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for tenant without a name")
	}
}

func TestRunRequiresSeedPath(t *testing.T) {
	if err := run(context.Background(), " ", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty seed path")
	}
	if err := run(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing seed file")
	}
}
