//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := NewScopedKeyer(nil, "sitegrid-test:").LayoutKey("c", map[string]int{"t": int(time.Now().UnixNano() % 1000)})
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRedisCacheFromClient(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts))
	defer c.Close()

	ctx := context.Background()
	key := "sitegrid-test:from-client"
	defer c.Delete(ctx, key)

	if err := c.Set(ctx, key, []byte("shared"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, key); err != nil || !hit || string(data) != "shared" {
		t.Errorf("Get = %q, hit %v, err %v", data, hit, err)
	}
}
