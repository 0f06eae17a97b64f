package plan

import (
	"fmt"
	"math"
)

// Validation messages.
const (
	MsgNonNegativeInteger = "Must be a non-negative integer"
	msgMaximumFormat      = "Maximum allowed is %d"
)

// Validation is the outcome of [Engine.Validate].
// A field appears in either Errors or Cleaned, never both.
type Validation struct {
	HasErrors bool              `json:"hasErrors"`
	Errors    map[string]string `json:"errors"`
	Cleaned   Quantities        `json:"cleaned"`
}

// Validate sanitizes untrusted input into producer quantities.
//
// Every producer id of the catalog is checked in order; other keys are
// ignored. Missing, nil and empty-string values default to 0.
func (e *Engine) Validate(raw map[string]any) Validation {
	v := Validation{
		Errors:  make(map[string]string),
		Cleaned: make(Quantities),
	}

	for _, id := range e.catalog.ProducerIDs() {
		value, ok := raw[id]
		if !ok || value == nil || value == "" {
			value = 0
		}

		n := toNumber(value)
		switch {
		case !isFinite(n) || n != math.Trunc(n) || n < 0:
			v.Errors[id] = MsgNonNegativeInteger
		case n > float64(e.maxQuantity):
			v.Errors[id] = fmt.Sprintf(msgMaximumFormat, e.maxQuantity)
		default:
			v.Cleaned[id] = int(n)
		}
	}

	v.HasErrors = len(v.Errors) > 0
	return v
}
