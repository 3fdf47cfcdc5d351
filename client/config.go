package client

import (
	"net/http"
	"time"

	"github.com/reddevil212/yt-decrypt/internal/httputil"
)

// Config carries client construction options. The zero value is usable.
type Config struct {
	// HTTPClient overrides the default hardened client.
	HTTPClient *http.Client
	// BaseURL overrides the watch page origin, mainly for tests.
	BaseURL string
	// UserAgent sent on watch page and player program fetches.
	UserAgent string
	// RequestTimeout bounds each top-level call; defaults to 30s.
	RequestTimeout time.Duration
	// CacheDir enables the on-disk player program cache when non-empty.
	CacheDir string
	// Logger receives non-fatal warnings; nil disables them.
	Logger Logger
}

func (c *Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return httputil.NewClient(c.RequestTimeout)
}

func (c *Config) timeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return 30 * time.Second
}
