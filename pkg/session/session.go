// Package session persists saved site configurations.
//
// A [Document] pairs the user's producer quantities with display colors.
// Documents are written once and read back by id; there is no update path.
//
// # Backends
//
//   - memory: process-local, for tests and single-instance demos
//   - file: one JSON file per document, for the CLI
//   - sqlite: single-file database (modernc.org/sqlite, no cgo)
//   - postgres: shared relational store (pgx)
//   - mongo: document store with ObjectID ids
//
// [Open] selects a backend from configuration; [Instrument] adds metrics.
//
// # Usage
//
//	doc, err := session.NewDocument(catalog.Default(), cleaned, colors)
//	if err != nil {
//	    return err // *errors.ValidationError for bad colors
//	}
//	id, err := store.Save(ctx, doc)
//
//	doc, err = store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // 404
//	}
package session

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	sgerrors "github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/plan"
)

// ErrNotFound is returned when no document has the requested id. Malformed
// ids are reported the same way.
var ErrNotFound = errors.New("session not found")

// MsgInvalidColor is the per-field message for a rejected color.
const MsgInvalidColor = "Must be a hex color like #1A2B3C"

// Document is a saved configuration.
type Document struct {
	ID        string            `json:"id"`
	Config    plan.Quantities   `json:"config"`
	Colors    map[string]string `json:"colors"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Store persists documents.
type Store interface {
	// Save assigns an id and timestamps, stores doc and returns the id.
	Save(ctx context.Context, doc *Document) (string, error)

	// Get returns the document with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns every document, newest first.
	List(ctx context.Context) ([]*Document, error)

	Close() error
}

// NewDocument builds a document for the producer quantities cleaned.
//
// Config keeps only producer ids of cat (missing ones are 0). Colors keep
// only catalog ids; absent entries take the catalog default. A malformed
// color yields a *errors.ValidationError listing every bad field.
func NewDocument(cat *catalog.Catalog, cleaned plan.Quantities, colors map[string]string) (*Document, error) {
	if cat == nil {
		cat = catalog.Default()
	}

	config := make(plan.Quantities, len(cat.ProducerIDs()))
	for _, id := range cat.ProducerIDs() {
		config[id] = cleaned.Count(id)
	}

	out := cat.DefaultColors()
	fields := sgerrors.FieldErrors{}
	for _, spec := range cat.All() {
		c, ok := colors[spec.ID]
		if !ok || c == "" {
			continue
		}
		if err := sgerrors.ValidateColor(c); err != nil {
			fields[spec.ID] = MsgInvalidColor
			continue
		}
		out[spec.ID] = c
	}
	if len(fields) > 0 {
		return nil, sgerrors.NewValidation(sgerrors.ErrCodeInvalidColor, "Invalid colors", fields)
	}

	return &Document{Config: config, Colors: out}, nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Config = d.Config.Clone()
	c.Colors = make(map[string]string, len(d.Colors))
	for k, v := range d.Colors {
		c.Colors[k] = v
	}
	return &c
}

// stamp sets fresh timestamps on a copy of doc, plus a UUID when the
// backend does not assign ids itself.
func stamp(doc *Document, withID bool) *Document {
	d := doc.Clone()
	if d.Config == nil {
		d.Config = plan.Quantities{}
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	if withID {
		d.ID = uuid.NewString()
	}
	return d
}

// sortNewest orders docs by CreatedAt descending, ties broken by id.
func sortNewest(docs []*Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
}
