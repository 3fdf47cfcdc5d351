package formats

import (
	"errors"
	"strings"
	"testing"
)

// reversingDecrypter reverses both challenge kinds, which is enough to
// observe that the right value landed in the right parameter.
type reversingDecrypter struct{}

func reverse(s string) string {
	b := []byte(s)
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return string(b)
}

func (reversingDecrypter) DecipherSignature(s string) (string, error) { return reverse(s), nil }
func (reversingDecrypter) DecipherN(n string) (string, error)        { return reverse(n), nil }

type failingDecrypter struct{ err error }

func (f failingDecrypter) DecipherSignature(string) (string, error) { return "", f.err }
func (f failingDecrypter) DecipherN(string) (string, error)         { return "", f.err }

// identityDecrypter returns inputs unchanged, so untouched URLs must pass
// through byte-for-byte.
type identityDecrypter struct{}

func (identityDecrypter) DecipherSignature(s string) (string, error) { return s, nil }
func (identityDecrypter) DecipherN(n string) (string, error)         { return n, nil }

func TestParseCipher(t *testing.T) {
	tests := []struct {
		name    string
		cipher  string
		want    CipherInput
		wantErr bool
	}{
		{
			name:   "full cipher",
			cipher: "s=ABC&sp=sig&url=https%3A%2F%2Fr.example.com%2Fv%3Fitag%3D22",
			want:   CipherInput{S: "ABC", SP: "sig", URL: "https://r.example.com/v?itag=22"},
		},
		{
			name:   "missing sp defaults to sig",
			cipher: "s=ABC&url=https%3A%2F%2Fr.example.com%2Fv",
			want:   CipherInput{S: "ABC", SP: "sig", URL: "https://r.example.com/v"},
		},
		{
			name:   "alternate destination parameter",
			cipher: "s=ABC&sp=signature&url=https%3A%2F%2Fr.example.com%2Fv",
			want:   CipherInput{S: "ABC", SP: "signature", URL: "https://r.example.com/v"},
		},
		{
			name:    "missing url",
			cipher:  "s=ABC&sp=sig",
			wantErr: true,
		},
		{
			name:    "bad percent encoding",
			cipher:  "s=AB%ZZ&url=x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCipher(tt.cipher)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedCipher) {
					t.Fatalf("ParseCipher() error = %v, want ErrMalformedCipher", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCipher() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCipher() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePassThroughIsByteForByte(t *testing.T) {
	// No cipher, no n parameter: the URL must come back unchanged, even
	// when it would not survive a decode/encode round trip.
	raw := "https://r.example.com/videoplayback?itag=18&mime=video%2Fmp4&key=a+b"
	out := Resolve([]Format{{Itag: 18, URL: raw}}, identityDecrypter{})
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if out[0].Err != nil {
		t.Fatalf("Err = %v", out[0].Err)
	}
	if out[0].URL != raw {
		t.Fatalf("URL = %q, want unchanged %q", out[0].URL, raw)
	}
}

func TestResolveUnchangedNIsByteForByte(t *testing.T) {
	raw := "https://r.example.com/videoplayback?n=abc123&itag=18"
	out := Resolve([]Format{{Itag: 18, URL: raw}}, identityDecrypter{})
	if out[0].URL != raw {
		t.Fatalf("URL = %q, want unchanged %q", out[0].URL, raw)
	}
}

func TestResolveCipheredFormat(t *testing.T) {
	f := Format{
		Itag:            137,
		SignatureCipher: "s=ABCDEF&sp=sig&url=https%3A%2F%2Fr.example.com%2Fv%3Fitag%3D137%26n%3Dxyz",
		QualityLabel:    "1080p",
	}
	out := Resolve([]Format{f}, reversingDecrypter{})
	if out[0].Err != nil {
		t.Fatalf("Err = %v", out[0].Err)
	}
	u := out[0].URL
	if !strings.Contains(u, "sig=FEDCBA") {
		t.Errorf("deciphered signature missing: %q", u)
	}
	if !strings.Contains(u, "n=zyx") {
		t.Errorf("n parameter not transformed: %q", u)
	}
	if !strings.HasPrefix(u, "https://r.example.com/v?itag=137") {
		t.Errorf("base URL mangled: %q", u)
	}
}

func TestResolveDefaultsSignatureParam(t *testing.T) {
	f := Format{
		Itag:            22,
		SignatureCipher: "s=XY&url=https%3A%2F%2Fr.example.com%2Fv",
	}
	out := Resolve([]Format{f}, reversingDecrypter{})
	if out[0].Err != nil {
		t.Fatalf("Err = %v", out[0].Err)
	}
	if !strings.Contains(out[0].URL, "?sig=YX") {
		t.Errorf("default sig parameter not applied: %q", out[0].URL)
	}
}

func TestResolveBatchToleratesFailures(t *testing.T) {
	in := []Format{
		{Itag: 18, URL: "https://r.example.com/ok1"},
		{Itag: 137, SignatureCipher: "%ZZ-not-a-query"},
		{Itag: 140, URL: "https://r.example.com/ok2"},
	}
	out := Resolve(in, identityDecrypter{})
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	if out[0].Err != nil || out[2].Err != nil {
		t.Fatalf("healthy formats flagged: %v / %v", out[0].Err, out[2].Err)
	}
	if out[1].Err == nil {
		t.Fatal("malformed cipher not flagged")
	}
	if !strings.Contains(out[1].Err.Error(), "itag 137") {
		t.Errorf("flagged error should name the itag: %v", out[1].Err)
	}
	// Input order preserved.
	if out[0].Itag != 18 || out[1].Itag != 137 || out[2].Itag != 140 {
		t.Errorf("order = %d,%d,%d", out[0].Itag, out[1].Itag, out[2].Itag)
	}
}

func TestResolveDecrypterFailureFlagsFormat(t *testing.T) {
	sentinel := errors.New("transform unavailable")
	in := []Format{
		{Itag: 18, URL: "https://r.example.com/plain"},
		{Itag: 137, SignatureCipher: "s=AB&url=https%3A%2F%2Fr.example.com%2Fv"},
	}
	out := Resolve(in, failingDecrypter{err: sentinel})
	if out[0].Err != nil {
		t.Fatalf("unprotected format flagged: %v", out[0].Err)
	}
	if !errors.Is(out[1].Err, sentinel) {
		t.Fatalf("Err = %v, want wrapped sentinel", out[1].Err)
	}
}
