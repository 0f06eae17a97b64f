package catalog

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/sitegrid/pkg/cache"
	"github.com/matzehuels/sitegrid/pkg/errors"
)

// DefaultCellSize is the physical length, in feet, of one grid cell.
const DefaultCellSize = 10

// Category classifies a device as user-chosen or derived.
type Category string

const (
	// Producer devices contribute usable energy; their counts are user input.
	Producer Category = "producer"

	// Infrastructure devices support producers; their counts are derived.
	Infrastructure Category = "infrastructure"
)

// DeviceSpec describes one kind of device.
type DeviceSpec struct {
	ID        string   `json:"id" toml:"id"`
	Name      string   `json:"name" toml:"name"`
	WidthFt   int      `json:"widthFt" toml:"width_ft"`
	DepthFt   int      `json:"depthFt" toml:"depth_ft"`
	EnergyMWh float64  `json:"mwh" toml:"energy_mwh"` // negative for consumers
	CostUSD   int64    `json:"cost" toml:"cost_usd"`
	Category  Category `json:"category" toml:"category"`
	Color     string   `json:"color,omitempty" toml:"color"` // default display color
}

// IsProducer reports whether the device count is user-controllable.
func (d DeviceSpec) IsProducer() bool { return d.Category == Producer }

// Catalog is an immutable, ordered registry of device specs.
// The zero value is not usable; construct with [New], [Default] or [Load].
type Catalog struct {
	cellSize int
	specs    []DeviceSpec
	byID     map[string]int
	producer []string
	infra    []string
	print    string
}

// New builds a catalog from specs in declaration order.
//
// It returns an INVALID_CATALOG error when cellSize is not positive, when an
// id is empty or duplicated, when a category is unknown, when a dimension is
// not a positive multiple of cellSize, when energy is not finite, or when
// cost is negative.
func New(cellSize int, specs ...DeviceSpec) (*Catalog, error) {
	if cellSize <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "cell size must be positive, got %d", cellSize)
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog has no devices")
	}

	c := &Catalog{
		cellSize: cellSize,
		specs:    make([]DeviceSpec, len(specs)),
		byID:     make(map[string]int, len(specs)),
	}
	copy(c.specs, specs)

	for i, s := range c.specs {
		if s.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "device %d has an empty id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate device id %q", s.ID)
		}
		if err := checkDimension(s.ID, "width", s.WidthFt, cellSize); err != nil {
			return nil, err
		}
		if err := checkDimension(s.ID, "depth", s.DepthFt, cellSize); err != nil {
			return nil, err
		}
		if math.IsNaN(s.EnergyMWh) || math.IsInf(s.EnergyMWh, 0) {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "device %q: energy must be finite", s.ID)
		}
		if s.CostUSD < 0 {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "device %q: cost must not be negative", s.ID)
		}
		if s.Color != "" {
			if err := errors.ValidateColor(s.Color); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "device %q", s.ID)
			}
		}

		switch s.Category {
		case Producer:
			c.producer = append(c.producer, s.ID)
		case Infrastructure:
			c.infra = append(c.infra, s.ID)
		default:
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "device %q: unknown category %q", s.ID, s.Category)
		}
		c.byID[s.ID] = i
	}

	if len(c.producer) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog has no producer devices")
	}

	data, _ := json.Marshal(struct {
		CellSize int          `json:"cellSize"`
		Specs    []DeviceSpec `json:"specs"`
	}{cellSize, c.specs})
	c.print = cache.Hash(data)

	return c, nil
}

// MustNew is like [New] but panics on error. It is intended for package-level
// catalogs built from literals.
func MustNew(cellSize int, specs ...DeviceSpec) *Catalog {
	c, err := New(cellSize, specs...)
	if err != nil {
		panic(err)
	}
	return c
}

func checkDimension(id, name string, v, cell int) error {
	if v <= 0 || v%cell != 0 {
		return errors.New(errors.ErrCodeInvalidCatalog,
			"device %q: %s %d must be a positive multiple of the cell size %d", id, name, v, cell)
	}
	return nil
}

// Lookup returns the spec for id and whether it exists.
func (c *Catalog) Lookup(id string) (DeviceSpec, bool) {
	i, ok := c.byID[id]
	if !ok {
		return DeviceSpec{}, false
	}
	return c.specs[i], true
}

// All returns every spec in declaration order. The slice is a copy.
func (c *Catalog) All() []DeviceSpec {
	out := make([]DeviceSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// ProducerIDs returns the ordered user-controllable device ids. The slice is a copy.
func (c *Catalog) ProducerIDs() []string {
	return append([]string(nil), c.producer...)
}

// InfrastructureIDs returns the ordered derived device ids. The slice is a copy.
func (c *Catalog) InfrastructureIDs() []string {
	return append([]string(nil), c.infra...)
}

// Len returns the number of devices.
func (c *Catalog) Len() int { return len(c.specs) }

// CellSize returns the grid cell length in feet.
func (c *Catalog) CellSize() int { return c.cellSize }

// ColumnSpan returns how many grid columns one instance of spec occupies.
func (c *Catalog) ColumnSpan(spec DeviceSpec) int { return spec.WidthFt / c.cellSize }

// Fingerprint returns a stable content hash of the catalog, used to scope
// cached calculation results to the device list that produced them.
func (c *Catalog) Fingerprint() string { return c.print }

// DefaultColors returns the display color of every device that declares one.
func (c *Catalog) DefaultColors() map[string]string {
	colors := make(map[string]string, len(c.specs))
	for _, s := range c.specs {
		if s.Color != "" {
			colors[s.ID] = s.Color
		}
	}
	return colors
}
