package plan_test

import (
	"fmt"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/plan"
)

func ExampleEngine_Calculate() {
	e := plan.New(catalog.Default())

	v := e.Validate(map[string]any{
		catalog.MegapackXL: 3,
		catalog.Megapack2:  "1",
	})
	if v.HasErrors {
		fmt.Println(v.Errors)
		return
	}

	r := e.Calculate(v.Cleaned)
	fmt.Println("transformers:", r.Config.Quantities[catalog.Transformer])
	fmt.Println("rows:", r.Grid.Rows)
	fmt.Printf("site: %dft x %dft\n", r.Totals.SiteWidthFt, r.Totals.SiteDepthFt)
	fmt.Printf("cost: $%d, energy: %gMWh\n", r.Totals.TotalCost, r.Totals.TotalMWh)
	for _, it := range r.Grid.Items {
		fmt.Printf("%s row=%d cols=%d..%d\n", it.ID, it.Row, it.ColStart, it.ColEnd())
	}
	// Output:
	// transformers: 2
	// rows: 2
	// site: 100ft x 20ft
	// cost: $470000, energy: 14MWh
	// megapackXL-1 row=0 cols=0..4
	// megapackXL-2 row=0 cols=4..8
	// megapackXL-3 row=1 cols=0..4
	// megapack2-1 row=1 cols=4..7
	// transformer-1 row=1 cols=7..8
	// transformer-2 row=1 cols=8..9
}

func ExampleEngine_Validate() {
	e := plan.New(nil)

	v := e.Validate(map[string]any{
		catalog.MegapackXL: -1,
		catalog.Megapack2:  3.5,
		catalog.PowerPack:  2000,
	})
	for _, id := range catalog.Default().ProducerIDs() {
		if msg, ok := v.Errors[id]; ok {
			fmt.Printf("%s: %s\n", id, msg)
		}
	}
	// Output:
	// megapackXL: Must be a non-negative integer
	// megapack2: Must be a non-negative integer
	// powerPack: Maximum allowed is 1000
}

func ExampleDeriveInfrastructure() {
	for n := 0; n <= 4; n++ {
		fmt.Println(n, "->", plan.DeriveInfrastructure(n))
	}
	// Output:
	// 0 -> 0
	// 1 -> 1
	// 2 -> 1
	// 3 -> 2
	// 4 -> 2
}
