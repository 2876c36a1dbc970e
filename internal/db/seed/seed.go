// Package seed loads tenant fixtures from TOML and upserts them into the
// database.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gorm.io/gorm"

	applog "vitrine/internal/log"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Tenants []Tenant `toml:"tenant"`
}

// Tenant is one business and its optional theme document.
type Tenant struct {
	ID          string         `toml:"id"`
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Subdomain   string         `toml:"subdomain"`
	LogoURL     string         `toml:"logo_url"`
	BannerURL   string         `toml:"banner_url"`
	Address     string         `toml:"address"`
	Phone       string         `toml:"phone"`
	Theme       map[string]any `toml:"theme"`
}

// Summary counts what Apply changed.
type Summary struct {
	Created int
	Updated int
	Themes  int
}

// Load reads and parses a seed file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document and validates every tenant and theme.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	meta, err := toml.Decode(string(data), &fx)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("decode seed: unknown keys %s", strings.Join(keys, ", "))
	}

	seen := make(map[string]bool)
	for i, t := range fx.Tenants {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("tenant %d: name must not be empty", i+1)
		}
		if sub := t.subdomain(); sub != "" {
			if seen[sub] {
				return nil, fmt.Errorf("tenant %d: duplicate subdomain %q", i+1, sub)
			}
			seen[sub] = true
		}
		if _, err := t.ThemeJSON(); err != nil {
			return nil, fmt.Errorf("tenant %d (%s): %w", i+1, t.Name, err)
		}
	}
	return &fx, nil
}

// ThemeJSON renders the theme table as the JSON document stored per tenant.
// A tenant without a theme table yields nil.
func (t Tenant) ThemeJSON() ([]byte, error) {
	if len(t.Theme) == 0 {
		return nil, nil
	}
	doc, err := json.Marshal(t.Theme)
	if err != nil {
		return nil, fmt.Errorf("encode theme: %w", err)
	}
	if _, err := theme.Parse(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (t Tenant) subdomain() string {
	return strings.ToLower(strings.TrimSpace(t.Subdomain))
}

func (t Tenant) business() models.Business {
	b := models.Business{
		ID:          strings.TrimSpace(t.ID),
		Name:        strings.TrimSpace(t.Name),
		Description: strings.TrimSpace(t.Description),
		LogoURL:     strings.TrimSpace(t.LogoURL),
		BannerURL:   strings.TrimSpace(t.BannerURL),
	}
	if sub := t.subdomain(); sub != "" {
		b.Subdomain = &sub
	}
	if v := strings.TrimSpace(t.Address); v != "" {
		b.Address = &v
	}
	if v := strings.TrimSpace(t.Phone); v != "" {
		b.Phone = &v
	}
	return b
}

// Apply upserts every tenant of the fixture. Tenants are matched by id, then
// by subdomain. A tenant without a theme table loses any stored theme.
func Apply(ctx context.Context, db *gorm.DB, fx *Fixture) (Summary, error) {
	var summary Summary
	if db == nil {
		return summary, fmt.Errorf("database handle is nil")
	}
	if fx == nil {
		return summary, nil
	}

	for idx, t := range fx.Tenants {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			incoming := t.business()
			existing, err := findExisting(tx, incoming)
			if err != nil {
				return err
			}

			if existing == nil {
				if err := tx.Create(&incoming).Error; err != nil {
					return fmt.Errorf("create business %q: %w", incoming.Name, err)
				}
				summary.Created++
			} else {
				updates := map[string]any{
					"name":        incoming.Name,
					"description": incoming.Description,
					"logo_url":    incoming.LogoURL,
					"banner_url":  incoming.BannerURL,
					"address":     incoming.Address,
					"phone":       incoming.Phone,
					"subdomain":   incoming.Subdomain,
				}
				if err := tx.Model(existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update business %q: %w", incoming.Name, err)
				}
				incoming.ID = existing.ID
				summary.Updated++
			}

			doc, err := t.ThemeJSON()
			if err != nil {
				return err
			}
			if doc == nil {
				return tx.Where("business_id = ?", incoming.ID).Delete(&models.BusinessTheme{}).Error
			}

			var row models.BusinessTheme
			err = tx.Where("business_id = ?", incoming.ID).Take(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = models.BusinessTheme{BusinessID: incoming.ID, Config: string(doc)}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("create theme for %q: %w", incoming.Name, err)
				}
			case err != nil:
				return fmt.Errorf("find theme for %q: %w", incoming.Name, err)
			default:
				if err := tx.Model(&row).Update("config", string(doc)).Error; err != nil {
					return fmt.Errorf("update theme for %q: %w", incoming.Name, err)
				}
			}
			summary.Themes++
			return nil
		})
		if err != nil {
			return summary, fmt.Errorf("tenant %d (%s): %w", idx+1, t.Name, err)
		}
	}

	applog.Debug(ctx, "seed applied", "created", summary.Created, "updated", summary.Updated, "themes", summary.Themes)
	return summary, nil
}

func findExisting(tx *gorm.DB, incoming models.Business) (*models.Business, error) {
	var existing models.Business
	if incoming.ID != "" {
		err := tx.Where("id = ?", incoming.ID).Take(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find business by id %q: %w", incoming.ID, err)
		}
	}
	if incoming.Subdomain != nil {
		err := tx.Where("subdomain = ?", *incoming.Subdomain).Take(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find business by subdomain %q: %w", *incoming.Subdomain, err)
		}
	}
	return nil, nil
}
