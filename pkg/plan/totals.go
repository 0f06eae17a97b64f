package plan

import (
	"github.com/shopspring/decimal"
)

// Totals aggregates cost, energy and footprint over a full configuration.
type Totals struct {
	TotalCost           int64   `json:"totalCost"`
	TotalMWh            float64 `json:"totalMwh"`
	SiteWidthFt         int     `json:"siteWidthFt"`
	SiteDepthFt         int     `json:"siteDepthFt"`
	ProducerCount       int     `json:"producerCount"`
	InfrastructureCount int     `json:"infrastructureCount"`
}

// CalculateTotals sums cost and signed energy over every catalog device in
// full and derives the site footprint from rows.
//
// Infrastructure energy is negative and offsets producer energy. The site
// width is fixed by the grid; the depth grows with the number of rows.
func (e *Engine) CalculateTotals(full FullConfig, rows int) Totals {
	cost := decimal.Zero
	energy := decimal.Zero

	for _, spec := range e.catalog.All() {
		qty := full.Quantities.Count(spec.ID)
		if qty == 0 {
			continue
		}
		n := decimal.NewFromInt(int64(qty))
		cost = cost.Add(decimal.NewFromInt(spec.CostUSD).Mul(n))
		energy = energy.Add(decimal.NewFromFloat(spec.EnergyMWh).Mul(n))
	}

	if rows < 0 {
		rows = 0
	}
	cell := e.catalog.CellSize()

	return Totals{
		TotalCost:           cost.IntPart(),
		TotalMWh:            energy.InexactFloat64(),
		SiteWidthFt:         e.columns * cell,
		SiteDepthFt:         rows * cell,
		ProducerCount:       full.Meta.ProducerCount,
		InfrastructureCount: full.Meta.InfrastructureCount,
	}
}
