// Package httputil fetches remote resources, such as device catalogs
// published over HTTP, with retry and an on-disk cache.
//
// [Client] performs GET requests. Network failures, 429 and 5xx responses
// are wrapped in [RetryableError] and retried by [Retry] with exponential
// backoff. Other non-2xx statuses fail immediately.
//
// [Cache] stores fetched bodies as files keyed by a SHA-256 of the key.
// Entries expire after a TTL but can still be read with [Cache.Peek], which
// lets callers fall back to the last good copy when the origin is down:
//
//	c, _ := httputil.NewCache(dir, 24*time.Hour)
//	client := httputil.NewClient(c)
//	body, err := client.GetCached(ctx, "https://example.com/devices.toml")
package httputil
