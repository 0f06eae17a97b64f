// Package pipeline runs the validate → calculate → render sequence shared by
// the CLI and the HTTP API.
//
// A [Runner] wraps a [plan.Engine] with caching, logging and observability
// hooks. Calculated layouts are cached under a key derived from the catalog
// fingerprint, the grid width and the cleaned quantities, so a changed
// catalog never serves stale results.
//
//	runner := pipeline.NewRunner(plan.New(nil), cache, nil, logger)
//	res, err := runner.Run(ctx, raw)
//	if ve, ok := errors.AsValidation(err); ok {
//	    // per-field messages in ve.Fields
//	}
//	svg, err := runner.RenderSVG(ctx, res.Result, pipeline.RenderOptions{})
package pipeline

import (
	"time"

	"github.com/matzehuels/sitegrid/pkg/plan"
)

// MsgInvalidConfiguration is the summary message of a rejected configuration.
const MsgInvalidConfiguration = "Invalid configuration"

// Result is a calculated layout plus run metadata.
type Result struct {
	plan.Result

	// Cached reports whether the layout came from the cache.
	Cached bool `json:"-"`

	// Duration covers the cache lookup and, on a miss, the calculation.
	Duration time.Duration `json:"-"`
}

// RenderOptions selects how a layout is drawn.
type RenderOptions struct {
	Colors    map[string]string
	Scale     int
	NoCaption bool
}
