package playerjs

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultPlayerBaseURL = "https://www.youtube.com"

// Locator matchers, most specific first: the serialized player config
// field, a bare player path anywhere in the page, and finally script tags
// in the DOM (embed pages reference the player that way).
var (
	jsURLFieldRegexp    = regexp.MustCompile(`"jsUrl":"([^"]+)"`)
	playerPathRegexp    = regexp.MustCompile(`(/s/player/[A-Za-z0-9_-]+/[A-Za-z0-9._/-]*base\.js)`)
	playerVersionRegexp = regexp.MustCompile(`/s/player/([A-Za-z0-9_-]+)/`)
)

// FindPlayerURL locates the URL of the current player program inside raw
// watch/embed page text. All matchers are tried before failing.
func FindPlayerURL(pageHTML string) (string, error) {
	if m := jsURLFieldRegexp.FindStringSubmatch(pageHTML); len(m) > 1 {
		return normalizePlayerURL(strings.ReplaceAll(m[1], `\/`, `/`)), nil
	}
	if m := playerPathRegexp.FindStringSubmatch(pageHTML); len(m) > 1 {
		return normalizePlayerURL(m[1]), nil
	}
	if src, ok := playerURLFromScriptTags(pageHTML); ok {
		return normalizePlayerURL(src), nil
	}
	return "", ErrPlayerURLNotFound
}

func playerURLFromScriptTags(pageHTML string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", false
	}
	var found string
	doc.Find("script[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if strings.Contains(src, "/s/player/") && strings.Contains(src, "base.js") {
			found = src
			return false
		}
		return true
	})
	return found, found != ""
}

func normalizePlayerURL(playerURL string) string {
	switch {
	case strings.HasPrefix(playerURL, "http://"), strings.HasPrefix(playerURL, "https://"):
		return playerURL
	case strings.HasPrefix(playerURL, "//"):
		return "https:" + playerURL
	case strings.HasPrefix(playerURL, "/"):
		return defaultPlayerBaseURL + playerURL
	default:
		return defaultPlayerBaseURL + "/" + playerURL
	}
}

// PlayerVersion derives the stable version key a player URL is cached
// under. Unrecognized URL shapes fall back to the URL itself, which still
// honors the invalidation rule: a new URL is a cache miss.
func PlayerVersion(playerURL string) string {
	if m := playerVersionRegexp.FindStringSubmatch(playerURL); len(m) > 1 {
		return m[1]
	}
	return playerURL
}
