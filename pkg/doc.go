// Package pkg provides the core libraries for Sitegrid site planning.
//
// # Overview
//
// Sitegrid turns a list of battery quantities into a site plan: it derives
// the transformers the batteries need, totals cost and energy, and packs
// every device into a fixed-width grid of 10 ft cells. The pkg directory is
// organized into three areas:
//
//  1. Domain logic ([catalog], [plan], [render])
//  2. Orchestration ([pipeline], [api])
//  3. Infrastructure ([cache], [session], [config], [observability], [httputil], [errors])
//
// # Architecture
//
// The typical data flow:
//
//	raw quantities (JSON body, CLI flags)
//	         ↓
//	    [plan] Validate (per-field errors)
//	         ↓
//	    [plan] BuildFullConfig (derive transformers)
//	         ↓
//	    [plan] BuildGrid + CalculateTotals
//	         ↓
//	    JSON / SVG / PNG / PDF / terminal output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/sitegrid/pkg/catalog"
//	    "github.com/matzehuels/sitegrid/pkg/plan"
//	    "github.com/matzehuels/sitegrid/pkg/render"
//	)
//
//	e := plan.New(catalog.Default())
//	v := e.Validate(map[string]any{"megapackXL": 3, "powerPack": "2"})
//	if v.HasErrors {
//	    // v.Errors maps field → message
//	}
//	res := e.Calculate(v.Cleaned)
//	svg := render.RenderSVG(res)
//
// # Main Packages
//
// [catalog] - Immutable device registry (dimensions, energy, cost, category),
// built in or loaded from a TOML file or URL.
//
// [plan] - Validation, infrastructure derivation, totals and row packing.
// Pure functions over an injected catalog; safe for concurrent use.
//
// [render] - SVG site plans, lipgloss terminal grids, and PDF/PNG conversion.
//
// [pipeline] - Cached validate → calculate → render runner shared by the CLI
// and the HTTP API.
//
// [api] - chi HTTP server exposing the engine and saved sessions.
//
// [session] - Saved configurations in memory, JSON files, SQLite, Postgres
// or MongoDB.
//
// [cache] - Layout and artifact cache (null, file, Redis).
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hook interfaces with a Prometheus implementation.
//
// [httputil] - Retrying HTTP client with an on-disk cache, used for remote
// device catalogs.
//
// [errors] - Coded errors and field validation errors.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/plan      # Examples only
//	go test -tags integration ./pkg/...  # Include Redis, Postgres, Mongo tests
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/catalog
// [plan]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/plan
// [render]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/api
// [session]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/sitegrid/pkg/errors
package pkg
