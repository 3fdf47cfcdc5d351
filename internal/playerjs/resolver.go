package playerjs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/reddevil212/yt-decrypt/internal/httputil"
)

// Resolver fetches the watch page and the player program. The network is
// treated as an opaque byte fetch; everything structural happens in the
// locator and extractor.
type Resolver interface {
	GetWatchPage(ctx context.Context, videoID string) (string, error)
	GetPlayerURL(ctx context.Context, videoID string) (string, error)
	GetPlayerJS(ctx context.Context, playerURL string) (string, error)
}

// ResolverConfig carries externally tunable settings for player fetches.
type ResolverConfig struct {
	BaseURL   string
	UserAgent string
}

const defaultWatchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type httpResolver struct {
	client *http.Client
	cache  Cache
	config ResolverConfig
}

func NewResolver(client *http.Client, cache Cache, cfg ...ResolverConfig) Resolver {
	config := ResolverConfig{}
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultPlayerBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultWatchUserAgent
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &httpResolver{client: client, cache: cache, config: config}
}

func (r *httpResolver) GetWatchPage(ctx context.Context, videoID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(r.config.BaseURL, "/") + "/watch")
	if err != nil {
		return "", fmt.Errorf("build watch url: %w", err)
	}
	q := u.Query()
	q.Set("v", videoID)
	u.RawQuery = q.Encode()

	body, err := httputil.Fetch(ctx, r.client, u.String(), r.config.UserAgent)
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	return string(body), nil
}

func (r *httpResolver) GetPlayerURL(ctx context.Context, videoID string) (string, error) {
	page, err := r.GetWatchPage(ctx, videoID)
	if err != nil {
		return "", err
	}
	return FindPlayerURL(page)
}

func (r *httpResolver) GetPlayerJS(ctx context.Context, playerURL string) (string, error) {
	playerURL = normalizePlayerURL(playerURL)
	version := PlayerVersion(playerURL)
	if body, ok := r.cache.Get(version); ok {
		return body, nil
	}

	body, err := httputil.Fetch(ctx, r.client, playerURL, r.config.UserAgent)
	if err != nil {
		return "", fmt.Errorf("fetch player js: %w", err)
	}
	r.cache.Set(version, string(body))
	return string(body), nil
}
