package catalog

import (
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/httputil"
)

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch downloads a TOML catalog from url using client. A client with a
// cache serves fresh copies locally and falls back to the last good copy
// when the origin cannot be reached.
func Fetch(ctx context.Context, client *httputil.Client, url string) (*Catalog, error) {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	body, err := client.GetCached(ctx, url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "fetch catalog %s", url)
	}
	return Decode(bytes.NewReader(body))
}

// Open loads a catalog from a file path or, for http(s) locations, from the
// network via client.
func Open(ctx context.Context, location string, client *httputil.Client) (*Catalog, error) {
	if IsRemote(location) {
		return Fetch(ctx, client, location)
	}
	return Load(location)
}
