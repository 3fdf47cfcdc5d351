// Package formats parses stream format descriptors out of a watch page and
// resolves them into playable URLs.
package formats

import (
	"encoding/json"
	"errors"
	"regexp"
)

// Format is one stream descriptor from the player response. Exactly one of
// URL and SignatureCipher is normally populated; protected streams carry
// the cipher instead of a direct URL.
type Format struct {
	Itag            int
	URL             string
	SignatureCipher string
	MimeType        string
	Quality         string
	QualityLabel    string
	Bitrate         int
	ContentLength   int64
}

// ErrNoPlayerResponse indicates the page text carries no serialized player
// response to read formats from.
var ErrNoPlayerResponse = errors.New("player response not found in page")

var playerResponseRegexp = regexp.MustCompile(`var ytInitialPlayerResponse\s*=\s*(\{.+?\});`)

type rawFormat struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	SignatureCipher string `json:"signatureCipher"`
	Cipher          string `json:"cipher"`
	MimeType        string `json:"mimeType"`
	Quality         string `json:"quality"`
	QualityLabel    string `json:"qualityLabel"`
	Bitrate         int    `json:"bitrate"`
	ContentLength   string `json:"contentLength"`
}

type playerResponse struct {
	StreamingData struct {
		Formats         []rawFormat `json:"formats"`
		AdaptiveFormats []rawFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

// ParseWatchPage extracts the serialized player response from raw page text
// and returns its formats, muxed first, order preserved.
func ParseWatchPage(pageHTML string) ([]Format, error) {
	m := playerResponseRegexp.FindStringSubmatch(pageHTML)
	if len(m) < 2 {
		return nil, ErrNoPlayerResponse
	}
	return ParsePlayerResponse([]byte(m[1]))
}

// ParsePlayerResponse parses formats out of a player response JSON document.
func ParsePlayerResponse(data []byte) ([]Format, error) {
	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	raw := make([]rawFormat, 0, len(resp.StreamingData.Formats)+len(resp.StreamingData.AdaptiveFormats))
	raw = append(raw, resp.StreamingData.Formats...)
	raw = append(raw, resp.StreamingData.AdaptiveFormats...)

	out := make([]Format, 0, len(raw))
	for _, f := range raw {
		cipher := f.SignatureCipher
		if cipher == "" {
			cipher = f.Cipher
		}
		out = append(out, Format{
			Itag:            f.Itag,
			URL:             f.URL,
			SignatureCipher: cipher,
			MimeType:        f.MimeType,
			Quality:         f.Quality,
			QualityLabel:    f.QualityLabel,
			Bitrate:         f.Bitrate,
			ContentLength:   parseInt64(f.ContentLength),
		})
	}
	return out, nil
}

func parseInt64(s string) int64 {
	var v int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0
		}
		v = v*10 + int64(c-'0')
	}
	if s == "" {
		return 0
	}
	return v
}

// Label returns the human-facing quality of f, preferring the explicit
// label.
func (f Format) Label() string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	return f.Quality
}
