package meta

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"vitrine/internal/config"
	applog "vitrine/internal/log"
	"vitrine/internal/metrics"
)

// LogoEncoder turns remote logo URLs into base64 data URIs so icons and the
// manifest do not depend on the origin of the image.
type LogoEncoder struct {
	client   *resty.Client
	maxBytes int64
	cache    *lru.LRU[string, string]
}

// NewLogoEncoder builds an encoder bounded by cfg.
func NewLogoEncoder(cfg config.AssetsConfig) *LogoEncoder {
	timeout := cfg.LogoFetchTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxBytes := int64(cfg.LogoMaxBytes)
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}

	return &LogoEncoder{
		client:   resty.New().SetTimeout(timeout).SetHeader("Accept", "image/*"),
		maxBytes: maxBytes,
		cache:    lru.NewLRU[string, string](256, nil, time.Hour),
	}
}

// Resolve returns the data URI of the logo, or the URL itself when the
// image cannot be fetched.
func (e *LogoEncoder) Resolve(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	if url == "" || strings.HasPrefix(url, "data:") {
		return url
	}
	if cached, ok := e.cache.Get(url); ok {
		metrics.RecordLogoEncode("cached")
		return cached
	}

	uri, err := e.Encode(ctx, url)
	if err != nil {
		applog.Warn(ctx, "logo re-encoding failed, using remote url", "url", url, "error", err)
		metrics.RecordLogoEncode("fallback")
		return url
	}
	e.cache.Add(url, uri)
	metrics.RecordLogoEncode("embedded")
	return uri
}

// Encode fetches url and returns it as a data URI.
func (e *LogoEncoder) Encode(ctx context.Context, url string) (string, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch logo: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("logo exceeds %d bytes", e.maxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("logo is empty")
	}

	mediaType := contentType(resp.Header().Get("Content-Type"), data)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("logo has non-image content type %q", mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func contentType(header string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
