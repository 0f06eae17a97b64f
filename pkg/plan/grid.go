package plan

import "strconv"

// Item is one placed device instance.
type Item struct {
	ID       string `json:"id"`   // "<device>-<ordinal>", ordinal from 1
	Type     string `json:"type"` // device id
	Row      int    `json:"row"`
	ColStart int    `json:"colStart"`
	ColSpan  int    `json:"colSpan"`
}

// ColEnd returns the first column after the item.
func (it Item) ColEnd() int { return it.ColStart + it.ColSpan }

// Grid is a packed layout.
type Grid struct {
	Items []Item `json:"layout"`
	Rows  int    `json:"rowsCount"`
}

// RowItems groups items by row index. Rows without items map to nil.
func (g Grid) RowItems() [][]Item {
	rows := make([][]Item, g.Rows)
	for _, it := range g.Items {
		if it.Row >= 0 && it.Row < len(rows) {
			rows[it.Row] = append(rows[it.Row], it)
		}
	}
	return rows
}

// BuildGrid expands full into individual instances and packs them row by row.
//
// Instances follow catalog order, then ordinal. An instance that would push
// the running row width past the column count starts a new row. Rows are
// never revisited.
func (e *Engine) BuildGrid(full FullConfig) Grid {
	items := make([]Item, 0, e.countInstances(full))

	row, used := 0, 0
	for _, spec := range e.catalog.All() {
		qty := full.Quantities.Count(spec.ID)
		span := e.catalog.ColumnSpan(spec)

		for i := 0; i < qty; i++ {
			if used+span > e.columns {
				row++
				used = 0
			}
			items = append(items, Item{
				ID:       spec.ID + "-" + strconv.Itoa(i+1),
				Type:     spec.ID,
				Row:      row,
				ColStart: used,
				ColSpan:  span,
			})
			used += span
		}
	}

	g := Grid{Items: items}
	if len(items) > 0 {
		g.Rows = items[len(items)-1].Row + 1
	}
	return g
}

func (e *Engine) countInstances(full FullConfig) int {
	n := 0
	for _, spec := range e.catalog.All() {
		n += full.Quantities.Count(spec.ID)
	}
	return n
}
