package render

import "github.com/matzehuels/sitegrid/pkg/catalog"

// DefaultScale is the SVG resolution in pixels per foot.
const DefaultScale = 4

// Option configures a renderer.
type Option func(*renderer)

type renderer struct {
	palette palette
	scale   int
	columns int
	caption bool
}

// WithCatalog sets the catalog used for default colors and names.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *renderer) {
		if c != nil {
			r.palette.catalog = c
		}
	}
}

// WithColors overrides device colors. Invalid entries are ignored.
func WithColors(colors map[string]string) Option {
	return func(r *renderer) { r.palette.colors = colors }
}

// WithScale sets pixels per foot for SVG output.
func WithScale(px int) Option {
	return func(r *renderer) {
		if px > 0 {
			r.scale = px
		}
	}
}

// WithColumns sets the site width in grid columns.
func WithColumns(n int) Option {
	return func(r *renderer) {
		if n > 0 {
			r.columns = n
		}
	}
}

// WithoutCaption omits the totals caption.
func WithoutCaption() Option { return func(r *renderer) { r.caption = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		palette: palette{catalog: catalog.Default()},
		scale:   DefaultScale,
		columns: 10,
		caption: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
