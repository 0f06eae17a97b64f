// Package render draws calculated site layouts.
//
// Two outputs are provided:
//
//   - [RenderSVG] produces a scalable site plan, one rectangle per placed
//     device, with the site footprint and totals as a caption.
//   - [Terminal] draws the grid with colored cells for the CLI.
//
// [ToPNG] and [ToPDF] convert SVG output using the external rsvg-convert
// tool.
//
//	res := plan.New(nil).Calculate(cleaned)
//	svg := render.RenderSVG(res, render.WithColors(doc.Colors))
//	fmt.Println(render.Terminal(res.Grid, render.WithColors(doc.Colors)))
package render
