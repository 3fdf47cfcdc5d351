package httputil

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

const testUA = "test-agent/1.0"

func TestFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != testUA {
			t.Errorf("User-Agent = %q, want %q", got, testUA)
		}
		if got := r.Header.Get("Accept-Encoding"); got != "gzip, deflate, br" {
			t.Errorf("Accept-Encoding = %q", got)
		}
		w.Write([]byte("plain body"))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, testUA)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "plain body" {
		t.Fatalf("Fetch() = %q", body)
	}
}

func TestFetchGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("gzipped body"))
		gz.Close()
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, testUA)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "gzipped body" {
		t.Fatalf("Fetch() = %q", body)
	}
}

func TestFetchBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		br := brotli.NewWriter(w)
		br.Write([]byte("brotli body"))
		br.Close()
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, testUA)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "brotli body" {
		t.Fatalf("Fetch() = %q", body)
	}
}

func TestFetchDeflate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		fl, _ := flate.NewWriter(w, flate.DefaultCompression)
		fl.Write([]byte("deflate body"))
		fl.Close()
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, testUA)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "deflate body" {
		t.Fatalf("Fetch() = %q", body)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL, testUA); err == nil {
		t.Fatal("Fetch() should fail on non-200 status")
	}
}

func TestFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := Fetch(ctx, srv.Client(), srv.URL, testUA); err == nil {
		t.Fatal("Fetch() should fail when the context expires")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(0)
	if c.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.Timeout)
	}
	c = NewClient(5 * time.Second)
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
}
