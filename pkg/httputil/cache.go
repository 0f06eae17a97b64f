package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the TTL. The data is still readable with [Cache.Peek].
var ErrExpired = errors.New("cache entry expired")

// Cache stores raw response bodies as files under a directory. A TTL of 0
// means entries never expire.
//
// A Cache is not goroutine-safe, but several instances may share a
// directory.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache in dir, creating the directory if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("httputil: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the body stored under key.
//
//   - (data, true, nil): fresh hit
//   - (nil, false, nil): miss
//   - (nil, false, ErrExpired): entry exists but is stale
func (c *Cache) Get(key string) ([]byte, bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Peek returns the body stored under key regardless of its age.
func (c *Cache) Peek(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data under key, resetting its age.
func (c *Cache) Set(key string, data []byte) error {
	return os.WriteFile(c.keyPath(key), data, 0o644)
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
