package pipeline

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegrid/pkg/cache"
	"github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/observability"
	"github.com/matzehuels/sitegrid/pkg/plan"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner executes calculations with caching.
//
// The Runner holds no per-request state; one instance may serve many
// goroutines.
type Runner struct {
	Engine *plan.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. Nil arguments select the default engine, a
// NullCache (caching disabled), the DefaultKeyer and the default logger.
func NewRunner(engine *plan.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if engine == nil {
		engine = plan.New(nil)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Engine: engine, Cache: c, Keyer: keyer, Logger: logger}
}

// Run validates raw and calculates the layout. Invalid input yields a
// *errors.ValidationError whose Fields map device ids to messages.
func (r *Runner) Run(ctx context.Context, raw map[string]any) (*Result, error) {
	q, err := r.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	return r.Calculate(ctx, q)
}

// Validate returns the cleaned producer quantities of raw, or a
// *errors.ValidationError.
func (r *Runner) Validate(ctx context.Context, raw map[string]any) (plan.Quantities, error) {
	v := r.Engine.Validate(raw)
	if !v.HasErrors {
		return v.Cleaned, nil
	}

	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	observability.Validation().OnValidationFailed(ctx, fields)
	r.Logger.Debug("rejected configuration", "fields", fields)

	return nil, errors.NewValidation(errors.ErrCodeInvalidInput, MsgInvalidConfiguration, errors.FieldErrors(v.Errors))
}

// Calculate returns the layout for already validated quantities, from the
// cache when possible. Cache failures are logged and never fail the call.
func (r *Runner) Calculate(ctx context.Context, q plan.Quantities) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	key := r.layoutKey(q)

	if res, ok := r.lookup(ctx, key); ok {
		out := &Result{Result: res, Cached: true, Duration: time.Since(start)}
		r.report(ctx, out)
		return out, nil
	}

	res := r.Engine.Calculate(q)
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
		}
	}

	out := &Result{Result: res, Duration: time.Since(start)}
	r.report(ctx, out)
	return out, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (plan.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return plan.Result{}, false
	}

	var res plan.Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "err", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return plan.Result{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeLayout)
	return res, true
}

func (r *Runner) report(ctx context.Context, res *Result) {
	observability.Pipeline().OnCalculate(ctx, res.Config.Meta.ProducerCount, res.Grid.Rows, res.Cached, res.Duration)
	r.Logger.Debug("calculated layout",
		"producers", res.Config.Meta.ProducerCount,
		"infrastructure", res.Config.Meta.InfrastructureCount,
		"rows", res.Grid.Rows,
		"cached", res.Cached,
		"duration", res.Duration)
}

// layoutKey scopes q to the catalog and grid width.
func (r *Runner) layoutKey(q plan.Quantities) string {
	scope := r.Engine.Catalog().Fingerprint() + "/" + strconv.Itoa(r.Engine.Columns())
	return r.Keyer.LayoutKey(scope, q)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
