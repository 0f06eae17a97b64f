package plan

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/sitegrid/pkg/catalog"
)

func TestValidate(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name      string
		raw       map[string]any
		wantErrs  map[string]string
		wantClean Quantities
	}{
		{
			name:      "empty input defaults to zero",
			raw:       map[string]any{},
			wantErrs:  map[string]string{},
			wantClean: Quantities{catalog.MegapackXL: 0, catalog.Megapack2: 0, catalog.Megapack: 0, catalog.PowerPack: 0},
		},
		{
			name: "valid numbers and numeric strings",
			raw: map[string]any{
				catalog.MegapackXL: 2,
				catalog.Megapack2:  "5",
				catalog.Megapack:   3.0,
				catalog.PowerPack:  "",
			},
			wantErrs:  map[string]string{},
			wantClean: Quantities{catalog.MegapackXL: 2, catalog.Megapack2: 5, catalog.Megapack: 3, catalog.PowerPack: 0},
		},
		{
			name: "radix-prefixed integer strings",
			raw: map[string]any{
				catalog.MegapackXL: "0x10",
				catalog.Megapack2:  " 0b11 ",
				catalog.Megapack:   "0o7",
			},
			wantErrs:  map[string]string{},
			wantClean: Quantities{catalog.MegapackXL: 16, catalog.Megapack2: 3, catalog.Megapack: 7, catalog.PowerPack: 0},
		},
		{
			name: "negative value",
			raw:  map[string]any{catalog.MegapackXL: -1},
			wantErrs: map[string]string{
				catalog.MegapackXL: "Must be a non-negative integer",
			},
			wantClean: Quantities{catalog.Megapack2: 0, catalog.Megapack: 0, catalog.PowerPack: 0},
		},
		{
			name: "fractional value",
			raw:  map[string]any{catalog.Megapack2: 3.5},
			wantErrs: map[string]string{
				catalog.Megapack2: "Must be a non-negative integer",
			},
			wantClean: Quantities{catalog.MegapackXL: 0, catalog.Megapack: 0, catalog.PowerPack: 0},
		},
		{
			name: "over maximum",
			raw:  map[string]any{catalog.PowerPack: 2000},
			wantErrs: map[string]string{
				catalog.PowerPack: "Maximum allowed is 1000",
			},
			wantClean: Quantities{catalog.MegapackXL: 0, catalog.Megapack2: 0, catalog.Megapack: 0},
		},
		{
			name: "non-numeric values",
			raw: map[string]any{
				catalog.MegapackXL: "abc",
				catalog.Megapack2:  []any{1},
				catalog.Megapack:   map[string]any{"n": 1},
				catalog.PowerPack:  1000,
			},
			wantErrs: map[string]string{
				catalog.MegapackXL: "Must be a non-negative integer",
				catalog.Megapack2:  "Must be a non-negative integer",
				catalog.Megapack:   "Must be a non-negative integer",
			},
			wantClean: Quantities{catalog.PowerPack: 1000},
		},
		{
			name:      "unknown and infrastructure keys are ignored",
			raw:       map[string]any{catalog.Transformer: -7, "rocket": "x", catalog.PowerPack: 1},
			wantErrs:  map[string]string{},
			wantClean: Quantities{catalog.MegapackXL: 0, catalog.Megapack2: 0, catalog.Megapack: 0, catalog.PowerPack: 1},
		},
		{
			name:      "null values default to zero",
			raw:       map[string]any{catalog.MegapackXL: nil},
			wantErrs:  map[string]string{},
			wantClean: Quantities{catalog.MegapackXL: 0, catalog.Megapack2: 0, catalog.Megapack: 0, catalog.PowerPack: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Validate(tt.raw)

			if v.HasErrors != (len(tt.wantErrs) > 0) {
				t.Errorf("HasErrors = %v, want %v", v.HasErrors, len(tt.wantErrs) > 0)
			}
			if len(v.Errors) != len(tt.wantErrs) {
				t.Errorf("Errors = %v, want %v", v.Errors, tt.wantErrs)
			}
			for k, want := range tt.wantErrs {
				if got := v.Errors[k]; got != want {
					t.Errorf("Errors[%s] = %q, want %q", k, got, want)
				}
			}
			if len(v.Cleaned) != len(tt.wantClean) {
				t.Errorf("Cleaned = %v, want %v", v.Cleaned, tt.wantClean)
			}
			for k, want := range tt.wantClean {
				got, ok := v.Cleaned[k]
				if !ok || got != want {
					t.Errorf("Cleaned[%s] = %d (present=%v), want %d", k, got, ok, want)
				}
			}
			for k := range v.Errors {
				if _, dup := v.Cleaned[k]; dup {
					t.Errorf("field %s is both invalid and cleaned", k)
				}
			}
		})
	}
}

func TestValidateDecodedJSON(t *testing.T) {
	e := New(nil)

	var raw map[string]any
	body := `{"megapackXL": 4, "megapack2": "2", "megapack": 1e1, "powerPack": 1001}`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}

	v := e.Validate(raw)
	if !v.HasErrors {
		t.Fatal("expected errors")
	}
	if v.Errors[catalog.PowerPack] != "Maximum allowed is 1000" {
		t.Errorf("powerPack error = %q", v.Errors[catalog.PowerPack])
	}
	if v.Cleaned[catalog.Megapack] != 10 {
		t.Errorf("megapack = %d, want 10", v.Cleaned[catalog.Megapack])
	}
}

func TestValidateCustomMaximum(t *testing.T) {
	e := New(nil, WithMaxQuantity(5))

	v := e.Validate(map[string]any{catalog.MegapackXL: 6})
	if got := v.Errors[catalog.MegapackXL]; got != "Maximum allowed is 5" {
		t.Errorf("error = %q, want %q", got, "Maximum allowed is 5")
	}
}
