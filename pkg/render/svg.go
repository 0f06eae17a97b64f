package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/sitegrid/pkg/plan"
)

const (
	svgMargin   = 16
	captionSize = 28
)

// RenderSVG draws res as a site plan.
//
// The site outline spans the configured columns; items wider than the site
// are drawn overflowing it. Depth grows with the number of rows.
func RenderSVG(res plan.Result, opts ...Option) []byte {
	r := newRenderer(opts...)
	cellFt := r.palette.catalog.CellSize()
	cellPx := cellFt * r.scale

	cols := r.columns
	for _, it := range res.Grid.Items {
		cols = max(cols, it.ColEnd())
	}

	siteW := r.columns * cellPx
	siteH := res.Grid.Rows * cellPx
	width := cols*cellPx + 2*svgMargin
	height := siteH + 2*svgMargin
	if r.caption {
		height += captionSize
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" font-family="sans-serif">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect class="site" x="%d" y="%d" width="%d" height="%d" fill="#F7F7F7" stroke="#BDBDBD" stroke-dasharray="4 2"/>`+"\n",
		svgMargin, svgMargin, siteW, siteH)

	renderGridLines(&buf, r.columns, res.Grid.Rows, cellPx)

	fontPx := max(8, cellPx/4)
	for _, it := range res.Grid.Items {
		x := svgMargin + it.ColStart*cellPx
		y := svgMargin + it.Row*cellPx
		w := it.ColSpan * cellPx
		fill := r.palette.fill(it.Type)

		fmt.Fprintf(&buf, `  <g class="item" id="item-%s">`+"\n", html.EscapeString(it.ID))
		fmt.Fprintf(&buf, `    <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s" stroke="#FFFFFF" stroke-width="1"/>`+"\n",
			x, y, w, cellPx, fill)
		fmt.Fprintf(&buf, `    <text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			x+w/2, y+cellPx/2, fontPx, ink(fill), html.EscapeString(r.label(it)))
		fmt.Fprintf(&buf, "    <title>%s</title>\n", html.EscapeString(it.ID))
		buf.WriteString("  </g>\n")
	}

	if r.caption {
		t := res.Totals
		fmt.Fprintf(&buf, `  <text class="caption" x="%d" y="%d" font-size="12" fill="#333333">%d ft × %d ft · %s · %s MWh</text>`+"\n",
			svgMargin, svgMargin+siteH+captionSize-6, t.SiteWidthFt, t.SiteDepthFt,
			FormatCost(t.TotalCost), FormatMWh(t.TotalMWh))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGridLines(buf *bytes.Buffer, cols, rows, cellPx int) {
	if rows == 0 {
		return
	}
	buf.WriteString(`  <g class="grid" stroke="#E0E0E0" stroke-width="1">` + "\n")
	for c := 1; c < cols; c++ {
		x := svgMargin + c*cellPx
		fmt.Fprintf(buf, `    <line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x, svgMargin, x, svgMargin+rows*cellPx)
	}
	for row := 1; row < rows; row++ {
		y := svgMargin + row*cellPx
		fmt.Fprintf(buf, `    <line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", svgMargin, y, svgMargin+cols*cellPx, y)
	}
	buf.WriteString("  </g>\n")
}

// label prefers the catalog name when the item is wide enough for it.
func (r renderer) label(it plan.Item) string {
	if spec, ok := r.palette.catalog.Lookup(it.Type); ok && spec.Name != "" && it.ColSpan > 1 {
		return spec.Name
	}
	return abbreviate(it.Type)
}
