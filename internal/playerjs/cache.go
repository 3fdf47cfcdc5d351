package playerjs

import (
	"os"
	"path/filepath"
	"sync"
)

// Cache stores fetched player program bodies keyed by version. A new
// player version is by definition a miss, which is the only invalidation
// rule this layer needs: version keys never collide across program
// revisions.
type Cache interface {
	Get(version string) (string, bool)
	Set(version string, jsBody string)
}

type memoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryCache returns a process-local Cache.
func NewMemoryCache() Cache {
	return &memoryCache{items: make(map[string]string)}
}

func (c *memoryCache) Get(version string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.items[version]
	return body, ok
}

func (c *memoryCache) Set(version string, jsBody string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[version] = jsBody
}

// fileCache persists program bodies under dir, one file per version, so
// repeated runs skip the multi-megabyte player download. Writes are
// temp+rename to keep partially written bodies from being served.
type fileCache struct {
	dir string
	mem Cache
}

// NewFileCache returns a Cache backed by dir with a memory tier in front.
func NewFileCache(dir string) Cache {
	return &fileCache{dir: dir, mem: NewMemoryCache()}
}

func (c *fileCache) Get(version string) (string, bool) {
	if body, ok := c.mem.Get(version); ok {
		return body, true
	}
	data, err := os.ReadFile(c.path(version))
	if err != nil {
		return "", false
	}
	c.mem.Set(version, string(data))
	return string(data), true
}

func (c *fileCache) Set(version string, jsBody string) {
	c.mem.Set(version, jsBody)
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return
	}
	tmp, err := os.CreateTemp(c.dir, "player-*.tmp")
	if err != nil {
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(jsBody); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return
	}
	if err := os.Rename(tmpPath, c.path(version)); err != nil {
		os.Remove(tmpPath)
	}
}

func (c *fileCache) path(version string) string {
	return filepath.Join(c.dir, sanitizeVersion(version)+".js")
}

func sanitizeVersion(version string) string {
	out := make([]rune, 0, len(version))
	for _, r := range version {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Registry caches one Decipherer per player program version, so every
// decrypt call for a version reuses the already-parsed operation pair.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Decipherer
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Decipherer)}
}

// Get returns the Decipherer for version, building one from jsBody on a
// miss.
func (r *Registry) Get(version, jsBody string) *Decipherer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.entries[version]; ok {
		return d
	}
	d := NewDecipherer(jsBody)
	r.entries[version] = d
	return d
}
