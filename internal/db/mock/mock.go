package mock

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vitrine/internal/db"
	"vitrine/internal/db/seed"
	applog "vitrine/internal/log"
)

// Ids of the fixture tenants.
const (
	AcmeID  = "3b6f0e2a-8c1d-4f7a-9e25-6d0c4b1a7e10"
	BloomID = "9a2d4c6e-1b3f-4e5a-8c7d-2f0e1a3b5c70"
	PlainID = "c4e8a1f2-5d3b-4a69-b7e0-8f1d2c3a4b90"
)

//go:embed fixtures.toml
var fixtures []byte

// New returns an in-memory sqlite database seeded with the fixture tenants.
// Every call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := "file:vitrine-mock-" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(conn); err != nil {
		return nil, err
	}

	fx, err := seed.Parse(fixtures)
	if err != nil {
		return nil, err
	}
	if _, err := seed.Apply(ctx, conn, fx); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready", "tenants", len(fx.Tenants))
	return conn, nil
}
