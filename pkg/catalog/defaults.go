package catalog

// Device ids of the built-in catalog.
const (
	MegapackXL  = "megapackXL"
	Megapack2   = "megapack2"
	Megapack    = "megapack"
	PowerPack   = "powerPack"
	Transformer = "transformer"
)

// defaultSpecs is the built-in device list. Lengths are feet, energy MWh,
// cost USD.
var defaultSpecs = []DeviceSpec{
	{ID: MegapackXL, Name: "Megapack XL", WidthFt: 40, DepthFt: 10, EnergyMWh: 4, CostUSD: 120000, Category: Producer, Color: "#2F80ED"},
	{ID: Megapack2, Name: "Megapack 2", WidthFt: 30, DepthFt: 10, EnergyMWh: 3, CostUSD: 90000, Category: Producer, Color: "#9B51E0"},
	{ID: Megapack, Name: "Megapack", WidthFt: 30, DepthFt: 10, EnergyMWh: 2.5, CostUSD: 80000, Category: Producer, Color: "#27AE60"},
	{ID: PowerPack, Name: "PowerPack", WidthFt: 10, DepthFt: 10, EnergyMWh: 1, CostUSD: 30000, Category: Producer, Color: "#F2C94C"},
	{ID: Transformer, Name: "Transformer", WidthFt: 10, DepthFt: 10, EnergyMWh: -0.5, CostUSD: 10000, Category: Infrastructure, Color: "#4F4F4F"},
}

var defaultCatalog = MustNew(DefaultCellSize, defaultSpecs...)

// Default returns the built-in catalog. The same immutable instance is
// returned on every call.
func Default() *Catalog { return defaultCatalog }
