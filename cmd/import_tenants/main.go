package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"vitrine/internal/config"
	"vitrine/internal/db"
	"vitrine/internal/db/seed"
)

var (
	loadConfigFunc   = config.Load
	openDatabaseFunc = db.Initialize
)

func main() {
	seedPath := "tenants.toml"
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}

	if err := run(context.Background(), seedPath, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, seedPath string, out io.Writer) error {
	if strings.TrimSpace(seedPath) == "" {
		return fmt.Errorf("seed path must not be empty")
	}

	// parse before connecting so a broken fixture never touches the database
	fx, err := seed.Load(seedPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required to import tenants")
	}

	database, err := openDatabaseFunc(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(database)

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	summary, err := seed.Apply(ctx, database, fx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d tenants from %s (%d created, %d updated, %d themes)\n",
		len(fx.Tenants), seedPath, summary.Created, summary.Updated, summary.Themes)
	return nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
