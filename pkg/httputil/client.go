package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for failed fetches.
var (
	ErrNetwork  = errors.New("network error")
	ErrNotFound = errors.New("resource not found")
)

// DefaultMaxBytes caps response bodies read by [Client].
const DefaultMaxBytes = 1 << 20

// Client performs GET requests with retry and an optional [Cache].
type Client struct {
	HTTP     *http.Client
	Cache    *Cache
	Attempts int
	Delay    time.Duration
	MaxBytes int64
	Headers  map[string]string
}

// NewClient returns a Client with a 30s timeout, 3 attempts and a 1s
// initial backoff. cache may be nil.
func NewClient(cache *Cache) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Cache:    cache,
		Attempts: 3,
		Delay:    time.Second,
		MaxBytes: DefaultMaxBytes,
	}
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		body, err = c.do(ctx, url)
		return err
	})
	return body, err
}

// GetCached returns the cached body for url while it is fresh. Otherwise it
// fetches url and stores the result. When the fetch fails and a stale copy
// exists, the stale copy is returned.
func (c *Client) GetCached(ctx context.Context, url string) ([]byte, error) {
	if c.Cache == nil {
		return c.Get(ctx, url)
	}
	if data, ok, _ := c.Cache.Get(url); ok {
		return data, nil
	}

	body, err := c.Get(ctx, url)
	if err != nil {
		if ctx.Err() == nil {
			if stale, ok := c.Cache.Peek(url); ok {
				return stale, nil
			}
		}
		return nil, err
	}
	_ = c.Cache.Set(url, body)
	return body, nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, limit)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
