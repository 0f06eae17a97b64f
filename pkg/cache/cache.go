// Package cache provides byte-level caching for calculation results and
// rendered artifacts.
//
// Three backends are available: [NullCache] (caching disabled), [FileCache]
// (local CLI use) and [RedisCache] (shared by API replicas). Keys are built
// by a [Keyer] so that callers never assemble cache keys by hand.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLLayout applies to calculated layouts. Results only change when the
	// catalog changes, and the catalog fingerprint is part of the key.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered SVG documents.
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
