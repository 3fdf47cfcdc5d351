package playerjs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	if _, ok := c.Get("v1"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("v1", "body-one")
	if body, ok := c.Get("v1"); !ok || body != "body-one" {
		t.Fatalf("Get() = %q, %v; want %q, true", body, ok, "body-one")
	}
	// A new player version is always a miss.
	if _, ok := c.Get("v2"); ok {
		t.Fatal("unknown version should miss")
	}
}

func TestFileCache(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)

	c.Set("abc123", "var x=1;")
	if body, ok := c.Get("abc123"); !ok || body != "var x=1;" {
		t.Fatalf("Get() = %q, %v; want cached body", body, ok)
	}

	// A second cache over the same directory must see the persisted body.
	c2 := NewFileCache(dir)
	if body, ok := c2.Get("abc123"); !ok || body != "var x=1;" {
		t.Fatalf("persisted Get() = %q, %v; want cached body", body, ok)
	}

	if _, err := os.Stat(filepath.Join(dir, "abc123.js")); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}

func TestFileCacheSanitizesVersionKeys(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)

	// Unrecognized player URLs fall back to the URL as version key; the
	// file name must stay inside the cache directory.
	c.Set("https://example.com/player/base.js", "body")
	if body, ok := c.Get("https://example.com/player/base.js"); !ok || body != "body" {
		t.Fatalf("Get() = %q, %v; want body", body, ok)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading cache dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cache dir has %d entries, want 1", len(entries))
	}
}

func TestFileCacheLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir)
	c.Set("v1", "one")
	c.Set("v1", "two")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading cache dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
	if body, ok := c.Get("v1"); !ok || body != "two" {
		t.Fatalf("Get() = %q, %v; want latest body", body, ok)
	}
}
