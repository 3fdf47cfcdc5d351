package formats

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrMalformedCipher indicates a signatureCipher value missing required
// fields or failing percent-decoding.
var ErrMalformedCipher = errors.New("malformed signature cipher")

// CipherInput is the decoded field set of one signatureCipher parameter.
// Keys in the source are untrusted and may be absent; URL is the only
// mandatory one.
type CipherInput struct {
	S   string // ciphered signature
	SP  string // destination parameter name
	URL string // base stream URL
}

// defaultSigParam is used when the cipher omits sp.
const defaultSigParam = "sig"

// ParseCipher decodes a signatureCipher string into its sub-fields.
func ParseCipher(cipher string) (CipherInput, error) {
	vals, err := url.ParseQuery(cipher)
	if err != nil {
		return CipherInput{}, fmt.Errorf("%w: %v", ErrMalformedCipher, err)
	}
	in := CipherInput{
		S:   vals.Get("s"),
		SP:  vals.Get("sp"),
		URL: vals.Get("url"),
	}
	if in.URL == "" {
		return CipherInput{}, fmt.Errorf("%w: missing url field", ErrMalformedCipher)
	}
	if in.SP == "" {
		in.SP = defaultSigParam
	}
	return in, nil
}

// Decrypter decodes signature and n challenges for one player program
// version.
type Decrypter interface {
	DecipherSignature(s string) (string, error)
	DecipherN(n string) (string, error)
}

// Resolved is one playable URL entry produced from a Format. Err is set
// when the format could not be resolved; the rest of the batch is
// unaffected.
type Resolved struct {
	Itag         int
	QualityLabel string
	MimeType     string
	URL          string
	Err          error
}

var nParamRegexp = regexp.MustCompile(`[?&]n=([^&]*)`)

// Resolve turns format descriptors into playable URL entries, input order
// preserved. Quality variants are independent, so one failing descriptor is
// flagged in place and never aborts the batch.
func Resolve(in []Format, dec Decrypter) []Resolved {
	out := make([]Resolved, 0, len(in))
	for _, f := range in {
		r := Resolved{
			Itag:         f.Itag,
			QualityLabel: f.Label(),
			MimeType:     f.MimeType,
		}
		u, err := resolveURL(f, dec)
		if err != nil {
			r.Err = fmt.Errorf("itag %d: %w", f.Itag, err)
		} else {
			r.URL = u
		}
		out = append(out, r)
	}
	return out
}

// resolveURL produces the playable URL for one format. Formats with no
// cipher and no n parameter pass through byte-for-byte: the URL string is
// never reparsed or re-encoded unless a parameter actually changes.
func resolveURL(f Format, dec Decrypter) (string, error) {
	streamURL := f.URL
	if f.SignatureCipher != "" {
		in, err := ParseCipher(f.SignatureCipher)
		if err != nil {
			return "", err
		}
		streamURL = in.URL
		if in.S != "" {
			sig, err := dec.DecipherSignature(in.S)
			if err != nil {
				return "", fmt.Errorf("signature decipher: %w", err)
			}
			sep := "&"
			if !strings.Contains(streamURL, "?") {
				sep = "?"
			}
			streamURL += sep + in.SP + "=" + url.QueryEscape(sig)
		}
	}
	if streamURL == "" {
		return "", fmt.Errorf("%w: no stream url", ErrMalformedCipher)
	}

	if m := nParamRegexp.FindStringSubmatch(streamURL); len(m) > 1 && m[1] != "" {
		decoded, err := dec.DecipherN(m[1])
		if err != nil {
			return "", fmt.Errorf("n transform: %w", err)
		}
		if decoded != m[1] {
			streamURL = strings.Replace(streamURL, "n="+m[1], "n="+decoded, 1)
		}
	}
	return streamURL, nil
}
