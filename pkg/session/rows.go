package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/sitegrid/pkg/plan"
)

// encodeFields serializes the map columns shared by the SQL backends.
func encodeFields(d *Document) (config, colors []byte, err error) {
	if config, err = json.Marshal(d.Config); err != nil {
		return nil, nil, fmt.Errorf("marshal config: %w", err)
	}
	if colors, err = json.Marshal(d.Colors); err != nil {
		return nil, nil, fmt.Errorf("marshal colors: %w", err)
	}
	return config, colors, nil
}

func decodeRow(id string, config, colors []byte, created, updated time.Time) (*Document, error) {
	d := &Document{
		ID:        id,
		Config:    plan.Quantities{},
		Colors:    map[string]string{},
		CreatedAt: created.UTC(),
		UpdatedAt: updated.UTC(),
	}
	if err := json.Unmarshal(config, &d.Config); err != nil {
		return nil, fmt.Errorf("decode config of %s: %w", id, err)
	}
	if err := json.Unmarshal(colors, &d.Colors); err != nil {
		return nil, fmt.Errorf("decode colors of %s: %w", id, err)
	}
	return d, nil
}
