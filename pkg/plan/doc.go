// Package plan computes site layouts from device quantities.
//
// # Overview
//
// This is the pure calculation engine behind sitegrid. Given a [catalog.Catalog]
// and a set of user-supplied producer counts it:
//
//  1. Validates raw input into clean [Quantities] ([Engine.Validate])
//  2. Derives infrastructure counts ([Engine.BuildFullConfig])
//  3. Packs every device instance into a fixed-width grid ([Engine.BuildGrid])
//  4. Aggregates cost, energy and footprint ([Engine.CalculateTotals])
//
// [Engine.Calculate] runs steps 2–4 for an already validated map.
//
// The engine holds no mutable state. All methods are safe for concurrent use
// and return fresh values on every call.
//
// # Validation
//
// Raw input is untrusted (typically decoded JSON). For each producer id:
//
//   - missing, null, or "" counts as 0
//   - numeric strings and numbers are converted
//   - non-integers, negatives and non-numbers fail with "Must be a non-negative integer"
//   - values above the maximum (1000) fail with "Maximum allowed is 1000"
//
// Keys that are not producer ids are ignored.
//
// # Infrastructure
//
// One transformer services up to two producers, so every infrastructure
// device gets ceil(producers / 2) units ([DeriveInfrastructure]). Callers can
// never set infrastructure counts directly; [Engine.BuildFullConfig]
// overwrites whatever was supplied.
//
// # Grid Packing
//
// Instances are laid out left to right in catalog order, starting a new row
// whenever the next instance would overflow the column count. Earlier rows
// are never revisited, so the result is deterministic but not optimal.
//
// A device wider than the whole grid is still placed on a row of its own and
// overflows it. The default catalog has no such device.
//
// # Malformed Numbers
//
// Every component re-guards its input through [CountOf]: non-numeric,
// non-finite and negative values count as zero instead of failing.
package plan
