package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/errors"
)

const fallbackColor = "#888888"

// palette resolves display colors for device ids.
type palette struct {
	catalog *catalog.Catalog
	colors  map[string]string
}

// fill returns the override for id if valid, else the catalog default,
// else a neutral gray.
func (p palette) fill(id string) string {
	if c, ok := p.colors[id]; ok && errors.ValidateColor(c) == nil {
		return c
	}
	if spec, ok := p.catalog.Lookup(id); ok && spec.Color != "" {
		return spec.Color
	}
	return fallbackColor
}

// ink returns black or white, whichever reads better on fill.
func ink(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return "#000000"
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#FFFFFF"
}
