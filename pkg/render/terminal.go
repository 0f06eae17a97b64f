package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sitegrid/pkg/plan"
)

// termCellWidth is the number of terminal columns per grid column.
const termCellWidth = 4

var (
	emptyCell = lipgloss.NewStyle().
			Width(termCellWidth).
			Foreground(lipgloss.Color("240")).
			Render("  · ")
	siteEdge = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal draws g as colored blocks, one line per row. Empty cells to the
// right of a row's last item are dotted. Items wider than the site overflow
// the right edge marker.
func Terminal(g plan.Grid, opts ...Option) string {
	r := newRenderer(opts...)
	if g.Rows == 0 {
		return siteEdge.Render("(empty site)")
	}

	var lines []string
	for _, items := range g.RowItems() {
		var b strings.Builder
		b.WriteString(siteEdge.Render("│"))
		used := 0
		for _, it := range items {
			for used < it.ColStart {
				b.WriteString(emptyCell)
				used++
			}
			b.WriteString(r.termBlock(it))
			used = it.ColEnd()
		}
		for used < r.columns {
			b.WriteString(emptyCell)
			used++
		}
		if used == r.columns {
			b.WriteString(siteEdge.Render("│"))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (r renderer) termBlock(it plan.Item) string {
	fill := r.palette.fill(it.Type)
	label := abbreviate(it.Type)
	width := it.ColSpan * termCellWidth
	if len(label) > width-1 {
		label = label[:max(0, width-1)]
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(fill)).
		Foreground(lipgloss.Color(ink(fill))).
		Width(width).
		MaxWidth(width).
		Align(lipgloss.Center).
		Render(label)
}

// Legend lists every device in g with its color swatch, in catalog order.
func Legend(g plan.Grid, opts ...Option) string {
	r := newRenderer(opts...)
	present := make(map[string]int)
	for _, it := range g.Items {
		present[it.Type]++
	}

	var parts []string
	for _, spec := range r.palette.catalog.All() {
		n, ok := present[spec.ID]
		if !ok {
			continue
		}
		fill := r.palette.fill(spec.ID)
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(fill)).
			Foreground(lipgloss.Color(ink(fill))).
			Render(" " + abbreviate(spec.ID) + " ")
		parts = append(parts, swatch+" "+spec.ID+" ×"+strconv.Itoa(n))
	}
	return strings.Join(parts, "  ")
}
