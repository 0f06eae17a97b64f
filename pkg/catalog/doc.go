// Package catalog is the read-only registry of device specifications.
//
// # Overview
//
// Every other package learns what devices exist, how large they are, and what
// they cost or yield from a [Catalog]. A catalog is built once at startup with
// [New], [Default], [Load] or [Open] and then passed by pointer to the
// components that need it. It is never mutated after construction, so a
// single instance can be shared freely between goroutines.
//
// # Categories
//
// Devices fall into two categories:
//
//   - [Producer]: battery units whose counts the user chooses
//   - [Infrastructure]: supporting units (transformers) whose counts are
//     always derived from the producer total and never user-settable
//
// [Catalog.ProducerIDs] returns the ordered list of user-controllable ids.
// Declaration order is significant: the grid packer places devices in exactly
// this order.
//
// # Grid Invariant
//
// Widths and depths are measured in feet and must be positive multiples of
// the catalog cell size (10 ft by default). [New] rejects specs that break
// this rule, which guarantees [Catalog.ColumnSpan] is always a whole number.
//
// # Loading From TOML
//
// A site can swap in its own device list:
//
//	cell_size = 10
//
//	[[device]]
//	id = "megapackXL"
//	name = "Megapack XL"
//	width_ft = 40
//	depth_ft = 10
//	energy_mwh = 4
//	cost_usd = 120000
//	category = "producer"
//	color = "#2F80ED"
//
//	cat, err := catalog.Load("devices.toml")
//
// [Open] also accepts an http(s) URL, fetched through an
// [httputil.Client] that retries transient failures and keeps a copy on
// disk for offline use.
package catalog
