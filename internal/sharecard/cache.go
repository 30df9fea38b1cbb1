package sharecard

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache provides file-based caching for rendered share cards so the
// image endpoint does not redraw on every crawler hit.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// NewCache creates a card cache in dir. Entries older than maxAge are
// treated as missing so cards track current conditions.
func NewCache(dir string, maxAge time.Duration) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Cache is optional, keep serving without it.
		log.Printf("sharecard: could not create cache directory: %v", err)
	}
	return &Cache{dir: dir, maxAge: maxAge}
}

// path returns the cache file for a location key.
func (c *Cache) path(location string) string {
	return filepath.Join(c.dir, fmt.Sprintf("card_%s.png", slug(location)))
}

// Get returns a cached card and true, or nil and false when the card
// is missing or stale.
func (c *Cache) Get(location string) ([]byte, bool) {
	path := c.path(location)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a rendered card.
func (c *Cache) Set(location string, data []byte) error {
	return os.WriteFile(c.path(location), data, 0644)
}

// GetAny returns any cached card regardless of age. Used as a
// fallback when rendering fails.
func (c *Cache) GetAny() ([]byte, bool) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, false
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

// slug reduces a location to a safe file name fragment.
func slug(location string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(location) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
