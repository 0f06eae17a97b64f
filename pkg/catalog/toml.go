package catalog

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sitegrid/pkg/errors"
)

// fileFormat is the on-disk TOML layout of a catalog.
type fileFormat struct {
	CellSize int          `toml:"cell_size"`
	Devices  []DeviceSpec `toml:"device"`
}

// Load reads a catalog from a TOML file. A missing cell_size defaults to
// [DefaultCellSize].
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a catalog from TOML. Unknown keys are rejected so that typos
// in a device definition do not silently fall back to zero values.
func Decode(r io.Reader) (*Catalog, error) {
	var ff fileFormat
	md, err := toml.NewDecoder(r).Decode(&ff)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "parse catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "unknown catalog keys: %s", strings.Join(keys, ", "))
	}
	if ff.CellSize == 0 {
		ff.CellSize = DefaultCellSize
	}
	return New(ff.CellSize, ff.Devices...)
}
