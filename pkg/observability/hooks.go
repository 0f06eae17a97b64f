// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; the binary decides at
// startup what receives them. Every hook defaults to a no-op, so packages
// like pipeline and session stay free of any metrics backend.
//
// Register hooks once before serving:
//
//	prom := observability.NewPrometheus()
//	prom.Install()
//	http.Handle("/metrics", prom.Handler())
//
// Emit events from library code:
//
//	observability.Cache().OnCacheHit(ctx, "layout")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// PipelineHooks receives events from layout calculation and rendering.
type PipelineHooks interface {
	// OnCalculate records one calculation. cached reports whether the result
	// came from the cache.
	OnCalculate(ctx context.Context, producers, rows int, cached bool, duration time.Duration)

	// OnRender records one rendering of a layout.
	OnRender(ctx context.Context, format string, size int, duration time.Duration)
}

// ValidationHooks receives events when input is rejected.
type ValidationHooks interface {
	OnValidationFailed(ctx context.Context, fields []string)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// StoreHooks receives events from session stores.
type StoreHooks interface {
	// OnStoreOp records one store call. op is "save", "get" or "list".
	OnStoreOp(ctx context.Context, driver, op string, duration time.Duration, err error)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records a served request. route is the matched pattern,
	// not the raw path, to keep cardinality bounded.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCalculate(context.Context, int, int, bool, time.Duration) {}
func (NoopPipelineHooks) OnRender(context.Context, string, int, time.Duration)       {}

// NoopValidationHooks is a no-op implementation of ValidationHooks.
type NoopValidationHooks struct{}

func (NoopValidationHooks) OnValidationFailed(context.Context, []string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreOp(context.Context, string, string, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks   PipelineHooks   = NoopPipelineHooks{}
	validationHooks ValidationHooks = NoopValidationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	storeHooks      StoreHooks      = NoopStoreHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetValidationHooks registers validation hooks. Nil is ignored.
func SetValidationHooks(h ValidationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		validationHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Validation returns the registered validation hooks.
func Validation() ValidationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return validationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	validationHooks = NoopValidationHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
