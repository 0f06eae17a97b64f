package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/sitegrid/pkg/errors"
)

func TestDefault(t *testing.T) {
	c := Default()

	wantProducers := []string{MegapackXL, Megapack2, Megapack, PowerPack}
	if got := c.ProducerIDs(); !slices.Equal(got, wantProducers) {
		t.Errorf("ProducerIDs() = %v, want %v", got, wantProducers)
	}
	if got := c.InfrastructureIDs(); !slices.Equal(got, []string{Transformer}) {
		t.Errorf("InfrastructureIDs() = %v, want [transformer]", got)
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
	if c.CellSize() != 10 {
		t.Errorf("CellSize() = %d, want 10", c.CellSize())
	}

	all := c.All()
	for i, id := range append(wantProducers, Transformer) {
		if all[i].ID != id {
			t.Errorf("All()[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}

	if Default() != c {
		t.Error("Default() should return the same instance")
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	spec, ok := c.Lookup(MegapackXL)
	if !ok {
		t.Fatal("Lookup(megapackXL) not found")
	}
	if spec.WidthFt != 40 || spec.CostUSD != 120000 || spec.EnergyMWh != 4 {
		t.Errorf("unexpected spec: %+v", spec)
	}
	if c.ColumnSpan(spec) != 4 {
		t.Errorf("ColumnSpan() = %d, want 4", c.ColumnSpan(spec))
	}

	tr, _ := c.Lookup(Transformer)
	if tr.EnergyMWh != -0.5 || tr.IsProducer() {
		t.Errorf("transformer should consume energy and not be a producer: %+v", tr)
	}

	if _, ok := c.Lookup("flux-capacitor"); ok {
		t.Error("Lookup() should report missing ids")
	}
}

func TestCopiesAreIndependent(t *testing.T) {
	c := Default()

	ids := c.ProducerIDs()
	ids[0] = "mutated"
	if c.ProducerIDs()[0] != MegapackXL {
		t.Error("ProducerIDs() must return a copy")
	}

	all := c.All()
	all[0].WidthFt = 999
	if spec, _ := c.Lookup(MegapackXL); spec.WidthFt != 40 {
		t.Error("All() must return a copy")
	}
}

func TestNewInvalid(t *testing.T) {
	valid := DeviceSpec{ID: "a", WidthFt: 10, DepthFt: 10, Category: Producer}

	tests := []struct {
		name  string
		cell  int
		specs []DeviceSpec
		want  string
	}{
		{"zero cell", 0, []DeviceSpec{valid}, "cell size"},
		{"no devices", 10, nil, "no devices"},
		{"empty id", 10, []DeviceSpec{{WidthFt: 10, DepthFt: 10, Category: Producer}}, "empty id"},
		{"duplicate", 10, []DeviceSpec{valid, valid}, "duplicate"},
		{"width not multiple", 10, []DeviceSpec{{ID: "a", WidthFt: 15, DepthFt: 10, Category: Producer}}, "width 15"},
		{"zero depth", 10, []DeviceSpec{{ID: "a", WidthFt: 10, Category: Producer}}, "depth 0"},
		{"negative cost", 10, []DeviceSpec{{ID: "a", WidthFt: 10, DepthFt: 10, CostUSD: -1, Category: Producer}}, "cost"},
		{"bad category", 10, []DeviceSpec{{ID: "a", WidthFt: 10, DepthFt: 10, Category: "storage"}}, "unknown category"},
		{"bad color", 10, []DeviceSpec{{ID: "a", WidthFt: 10, DepthFt: 10, Category: Producer, Color: "blue"}}, "device \"a\""},
		{"no producers", 10, []DeviceSpec{{ID: "t", WidthFt: 10, DepthFt: 10, Category: Infrastructure}}, "no producer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cell, tt.specs...)
			if err == nil {
				t.Fatal("New() expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidCatalog)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := MustNew(10, DeviceSpec{ID: "a", WidthFt: 10, DepthFt: 10, Category: Producer, CostUSD: 1})
	b := MustNew(10, DeviceSpec{ID: "a", WidthFt: 10, DepthFt: 10, Category: Producer, CostUSD: 1})
	c := MustNew(10, DeviceSpec{ID: "a", WidthFt: 10, DepthFt: 10, Category: Producer, CostUSD: 2})

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical catalogs should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different catalogs should have different fingerprints")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a.Fingerprint()))
	}
}

func TestDefaultColors(t *testing.T) {
	colors := Default().DefaultColors()
	if colors[Transformer] != "#4F4F4F" {
		t.Errorf("transformer color = %q", colors[Transformer])
	}
	if len(colors) != 5 {
		t.Errorf("len(colors) = %d, want 5", len(colors))
	}
}

func TestLoad(t *testing.T) {
	doc := `
cell_size = 5

[[device]]
id = "cell"
name = "Cell"
width_ft = 5
depth_ft = 5
energy_mwh = 0.5
cost_usd = 1000
category = "producer"

[[device]]
id = "inverter"
name = "Inverter"
width_ft = 10
depth_ft = 5
energy_mwh = -0.1
cost_usd = 500
category = "infrastructure"
color = "#333"
`
	path := filepath.Join(t.TempDir(), "devices.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.CellSize() != 5 {
		t.Errorf("CellSize() = %d, want 5", c.CellSize())
	}
	inv, ok := c.Lookup("inverter")
	if !ok {
		t.Fatal("inverter not loaded")
	}
	if c.ColumnSpan(inv) != 2 {
		t.Errorf("ColumnSpan(inverter) = %d, want 2", c.ColumnSpan(inv))
	}
	if !slices.Equal(c.ProducerIDs(), []string{"cell"}) {
		t.Errorf("ProducerIDs() = %v", c.ProducerIDs())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "[[device]\nid ="},
		{"unknown key", "[[device]]\nid = \"a\"\nwidth_ft = 10\ndepth_ft = 10\ncategory = \"producer\"\nheight_ft = 3\n"},
		{"bad dimension", "[[device]]\nid = \"a\"\nwidth_ft = 7\ndepth_ft = 10\ncategory = \"producer\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.doc)); !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("Decode() error = %v, want INVALID_CATALOG", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
