package session

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/sitegrid/pkg/observability"
)

type instrumented struct {
	Store
	driver string
}

// Instrument reports every call on s to the registered store hooks, labelled
// with driver. A missing document is not counted as an error.
func Instrument(s Store, driver string) Store {
	return &instrumented{Store: s, driver: driver}
}

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	observability.Store().OnStoreOp(ctx, s.driver, op, time.Since(start), err)
}

func (s *instrumented) Save(ctx context.Context, doc *Document) (string, error) {
	start := time.Now()
	id, err := s.Store.Save(ctx, doc)
	s.observe(ctx, "save", start, err)
	return id, err
}

func (s *instrumented) Get(ctx context.Context, id string) (*Document, error) {
	start := time.Now()
	d, err := s.Store.Get(ctx, id)
	s.observe(ctx, "get", start, err)
	return d, err
}

func (s *instrumented) List(ctx context.Context) ([]*Document, error) {
	start := time.Now()
	docs, err := s.Store.List(ctx)
	s.observe(ctx, "list", start, err)
	return docs, err
}
