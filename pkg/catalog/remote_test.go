package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/httputil"
)

const remoteTOML = `
[[device]]
id = "cube"
name = "Cube"
width_ft = 20
depth_ft = 10
energy_mwh = 2
cost_usd = 50000
category = "producer"

[[device]]
id = "transformer"
name = "Transformer"
width_ft = 10
depth_ft = 10
energy_mwh = -0.5
cost_usd = 10000
category = "infrastructure"
`

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/devices.toml": true,
		"http://localhost:8080/c.toml":     true,
		"devices.toml":                     false,
		"/etc/sitegrid/devices.toml":       false,
		"ftp://example.com/devices.toml":   false,
	}
	for loc, want := range tests {
		if got := IsRemote(loc); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", loc, got, want)
		}
	}
}

func TestOpenRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(remoteTOML))
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := Open(context.Background(), srv.URL+"/devices.toml", httputil.NewClient(cache))
	if err != nil {
		t.Fatal(err)
	}
	if cat.CellSize() != DefaultCellSize {
		t.Errorf("cell size = %d", cat.CellSize())
	}
	if ids := cat.ProducerIDs(); len(ids) != 1 || ids[0] != "cube" {
		t.Errorf("producers = %v", ids)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, ""},
		{"bad toml", http.StatusOK, "[[device]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := Fetch(context.Background(), nil, srv.URL)
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("err = %v, want INVALID_CATALOG", err)
			}
		})
	}
}
