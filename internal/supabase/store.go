// Package supabase reads tenant data from a hosted PostgREST backend.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"vitrine/internal/config"
	"vitrine/internal/gateway"
	applog "vitrine/internal/log"
	"vitrine/models"
)

const (
	businessesTable = "businesses"
	themesTable     = "business_themes"
)

// Store implements gateway.Store with single-row PostgREST selects.
type Store struct {
	client *resty.Client
}

// New builds a Store for the project at cfg.URL.
func New(cfg config.SupabaseConfig) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(100*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Authorization", "Bearer "+cfg.AnonKey).
		SetHeader("Accept", "application/json")

	return &Store{client: client}
}

func (s *Store) BusinessByID(ctx context.Context, id string) (*models.Business, error) {
	return s.business(ctx, "id", id)
}

func (s *Store) BusinessBySubdomain(ctx context.Context, subdomain string) (*models.Business, error) {
	return s.business(ctx, "subdomain", subdomain)
}

func (s *Store) ThemeDocument(ctx context.Context, businessID string) ([]byte, error) {
	var rows []struct {
		Config json.RawMessage `json:"config"`
	}
	if err := s.selectOne(ctx, themesTable, "config", "business_id", businessID, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gateway.ErrNotFound
	}
	doc := bytes.TrimSpace(rows[0].Config)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return nil, gateway.ErrNotFound
	}
	return doc, nil
}

// Ping checks that the REST endpoint answers with the configured key.
func (s *Store) Ping(ctx context.Context) error {
	var rows []json.RawMessage
	return s.selectOne(ctx, businessesTable, "id", "", "", &rows)
}

func (s *Store) business(ctx context.Context, column, value string) (*models.Business, error) {
	var rows []models.Business
	if err := s.selectOne(ctx, businessesTable, "*", column, value, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gateway.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) selectOne(ctx context.Context, table, columns, column, value string, out any) error {
	req := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", columns).
		SetQueryParam("limit", "1").
		SetResult(out)
	if column != "" {
		req.SetQueryParam(column, "eq."+value)
	}

	resp, err := req.Get("/" + table)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	if resp.StatusCode() != http.StatusOK {
		applog.Debug(ctx, "postgrest error response", "table", table, "status", resp.StatusCode(), "body", resp.String())
		return fmt.Errorf("query %s: unexpected status %d", table, resp.StatusCode())
	}
	return nil
}
