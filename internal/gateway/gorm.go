package gateway

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"vitrine/models"
)

// GormStore reads tenants from a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) BusinessByID(ctx context.Context, id string) (*models.Business, error) {
	return s.takeBusiness(ctx, "id = ?", id)
}

func (s *GormStore) BusinessBySubdomain(ctx context.Context, subdomain string) (*models.Business, error) {
	return s.takeBusiness(ctx, "subdomain = ?", subdomain)
}

func (s *GormStore) ThemeDocument(ctx context.Context, businessID string) ([]byte, error) {
	var row models.BusinessTheme
	err := s.db.WithContext(ctx).Where("business_id = ?", businessID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc := strings.TrimSpace(row.Config)
	if doc == "" || doc == "null" {
		return nil, ErrNotFound
	}
	return []byte(doc), nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database handle is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) takeBusiness(ctx context.Context, query string, arg string) (*models.Business, error) {
	var b models.Business
	err := s.db.WithContext(ctx).Where(query, arg).Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
