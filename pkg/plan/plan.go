package plan

import (
	"github.com/matzehuels/sitegrid/pkg/catalog"
)

// Defaults for the fixed site grid.
const (
	// DefaultColumns is the number of grid columns (10 × 10 ft = 100 ft).
	DefaultColumns = 10

	// DefaultMaxQuantity is the largest count accepted per producer field.
	DefaultMaxQuantity = 1000
)

// Quantities maps a device id to an instance count.
type Quantities map[string]int

// Count returns the sanitized count for id; missing or negative entries are 0.
func (q Quantities) Count(id string) int {
	v, ok := q[id]
	if !ok {
		return 0
	}
	return CountOf(v)
}

// Clone returns an independent copy of q.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// Metadata records counts derived from a configuration. It is always
// recomputed and never taken from user input.
type Metadata struct {
	ProducerCount       int `json:"producerCount"`
	InfrastructureCount int `json:"infrastructureCount"`
}

// FullConfig is a validated configuration extended with derived
// infrastructure counts.
type FullConfig struct {
	Quantities Quantities `json:"quantities"`
	Meta       Metadata   `json:"meta"`
}

// Result bundles everything one calculation produces.
type Result struct {
	Config FullConfig `json:"config"`
	Totals Totals     `json:"totals"`
	Grid   Grid       `json:"grid"`
}

// Engine runs layout calculations against a catalog.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	catalog     *catalog.Catalog
	columns     int
	maxQuantity int
}

// Option configures an Engine.
type Option func(*Engine)

// WithColumns sets the grid width in columns. Non-positive values are ignored.
func WithColumns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.columns = n
		}
	}
}

// WithMaxQuantity sets the per-field validation maximum. Negative values are ignored.
func WithMaxQuantity(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxQuantity = n
		}
	}
}

// New creates an Engine for cat. A nil catalog selects [catalog.Default].
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	e := &Engine{
		catalog:     cat,
		columns:     DefaultColumns,
		maxQuantity: DefaultMaxQuantity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Columns returns the grid width in columns.
func (e *Engine) Columns() int { return e.columns }

// MaxQuantity returns the per-field validation maximum.
func (e *Engine) MaxQuantity() int { return e.maxQuantity }

// Calculate derives, packs and totals an already validated configuration.
func (e *Engine) Calculate(q Quantities) Result {
	full := e.BuildFullConfig(q)
	grid := e.BuildGrid(full)
	return Result{
		Config: full,
		Totals: e.CalculateTotals(full, grid.Rows),
		Grid:   grid,
	}
}
