package cache

import "sort"

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the calculation of quantities against the
	// catalog with the given fingerprint.
	LayoutKey(catalog string, quantities map[string]int) string

	// ArtifactKey identifies a rendering of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the rendering inputs that affect the output bytes.
type ArtifactKeyOpts struct {
	Format string            `json:"format"`
	Scale  int               `json:"scale,omitempty"`
	Colors map[string]string `json:"colors,omitempty"`
	// NoCaption marks documents drawn without the totals caption.
	NoCaption bool `json:"noCaption,omitempty"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the catalog fingerprint with the quantities in key order.
func (DefaultKeyer) LayoutKey(catalog string, quantities map[string]int) string {
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([][2]any, len(ids))
	for i, id := range ids {
		pairs[i] = [2]any{id, quantities[id]}
	}
	return hashKey("layout", catalog, pairs)
}

// ArtifactKey hashes the layout hash with the rendering options.
// encoding/json sorts map keys, so color maps hash deterministically.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating key spaces that share
// one backend (for example several deployments on one Redis).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer selects [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(catalog string, quantities map[string]int) string {
	return k.prefix + k.inner.LayoutKey(catalog, quantities)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
