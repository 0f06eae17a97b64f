package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/sitegrid/pkg/cache"
	"github.com/matzehuels/sitegrid/pkg/observability"
	"github.com/matzehuels/sitegrid/pkg/plan"
	"github.com/matzehuels/sitegrid/pkg/render"
)

// RenderSVG draws res with opts, caching the document by layout content
// and rendering options.
func (r *Runner) RenderSVG(ctx context.Context, res plan.Result, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.ArtifactKey(
		cache.Hash(append([]byte(r.Engine.Catalog().Fingerprint()), layoutData...)),
		cache.ArtifactKeyOpts{Format: render.FormatSVG, Scale: opts.Scale, Colors: opts.Colors, NoCaption: opts.NoCaption},
	)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	ropts := []render.Option{
		render.WithCatalog(r.Engine.Catalog()),
		render.WithColumns(r.Engine.Columns()),
		render.WithColors(opts.Colors),
		render.WithScale(opts.Scale),
	}
	if opts.NoCaption {
		ropts = append(ropts, render.WithoutCaption())
	}
	svg := render.RenderSVG(res, ropts...)

	if err := r.Cache.Set(ctx, key, svg, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(svg))
	}

	d := time.Since(start)
	observability.Pipeline().OnRender(ctx, render.FormatSVG, len(svg), d)
	r.Logger.Debug("rendered layout", "format", render.FormatSVG, "bytes", len(svg), "duration", d)
	return svg, nil
}
