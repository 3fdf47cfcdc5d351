// Package client is the high-level facade: it turns a video ID into
// playable stream URLs by fetching the watch page, locating and fetching
// the player program, and replaying its extracted transforms against each
// protected format.
package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reddevil212/yt-decrypt/internal/formats"
	"github.com/reddevil212/yt-decrypt/internal/playerjs"
	"github.com/reddevil212/yt-decrypt/internal/selector"
)

// Client resolves protected stream descriptors into playable URLs.
type Client struct {
	config   Config
	http     *http.Client
	resolver playerjs.Resolver
	registry *playerjs.Registry
	logger   Logger
}

// New creates a new client.
func New(config Config) *Client {
	httpClient := config.httpClient()

	var cache playerjs.Cache
	if config.CacheDir != "" {
		cache = playerjs.NewFileCache(config.CacheDir)
	} else {
		cache = playerjs.NewMemoryCache()
	}

	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Client{
		config: config,
		http:   httpClient,
		resolver: playerjs.NewResolver(httpClient, cache, playerjs.ResolverConfig{
			BaseURL:   config.BaseURL,
			UserAgent: config.UserAgent,
		}),
		registry: playerjs.NewRegistry(),
		logger:   logger,
	}
}

// GetFormats fetches the watch page for the input ID/URL and resolves
// every stream format into a playable URL entry, input order preserved.
// Individual formats that fail to decrypt are flagged in place.
func (c *Client) GetFormats(ctx context.Context, input string) ([]formats.Resolved, error) {
	return c.GetFormatsMatching(ctx, input, "")
}

// GetFormatsMatching resolves only the formats matched by a selection
// expression such as "best", "bestaudio" or "res<=720". An empty
// expression resolves everything.
func (c *Client) GetFormatsMatching(ctx context.Context, input, expr string) ([]formats.Resolved, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var sel *selector.Selector
	if expr != "" {
		var err error
		sel, err = selector.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("format selector: %w", err)
		}
	}

	videoID, err := ExtractVideoID(input)
	if err != nil {
		return nil, err
	}

	page, err := c.resolver.GetWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	fmts, err := formats.ParseWatchPage(page)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	fmts = selector.Select(fmts, sel)
	if len(fmts) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoPlayableFormats)
	}

	dec, err := c.loadDecipherer(ctx, page)
	if err != nil {
		// Unprotected formats can still be resolved; protected ones are
		// flagged individually below.
		c.logger.Warnf("player program unavailable for video=%s: %v", videoID, err)
	}

	resolved := formats.Resolve(fmts, decrypterOrFailing(dec, err))
	for _, r := range resolved {
		if r.Err != nil {
			c.logger.Warnf("video %s: %v", videoID, r.Err)
		}
	}
	return resolved, nil
}

// DecodeScript extracts the raw transform sources for the player program
// the given video currently ships with.
func (c *Client) DecodeScript(ctx context.Context, input string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	videoID, err := ExtractVideoID(input)
	if err != nil {
		return "", err
	}
	page, err := c.resolver.GetWatchPage(ctx, videoID)
	if err != nil {
		return "", err
	}
	dec, err := c.loadDecipherer(ctx, page)
	if err != nil {
		return "", err
	}
	return dec.DecodeScript()
}

// PlayerURL resolves the current player program URL for a video.
func (c *Client) PlayerURL(ctx context.Context, input string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	videoID, err := ExtractVideoID(input)
	if err != nil {
		return "", err
	}
	return c.resolver.GetPlayerURL(ctx, videoID)
}

func (c *Client) loadDecipherer(ctx context.Context, page string) (*playerjs.Decipherer, error) {
	playerURL, err := playerjs.FindPlayerURL(page)
	if err != nil {
		return nil, err
	}
	jsBody, err := c.resolver.GetPlayerJS(ctx, playerURL)
	if err != nil {
		return nil, err
	}
	return c.registry.Get(playerjs.PlayerVersion(playerURL), jsBody), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.timeout())
}

// decrypterOrFailing substitutes a Decrypter that fails every call when
// the player program could not be loaded, so unprotected formats still
// pass through while protected ones are flagged.
func decrypterOrFailing(dec *playerjs.Decipherer, err error) formats.Decrypter {
	if dec != nil {
		return dec
	}
	return failingDecrypter{err: err}
}

type failingDecrypter struct{ err error }

func (f failingDecrypter) DecipherSignature(string) (string, error) { return "", f.err }
func (f failingDecrypter) DecipherN(string) (string, error)         { return "", f.err }
