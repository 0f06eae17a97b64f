package session

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

func (s *MemoryStore) Save(ctx context.Context, doc *Document) (string, error) {
	d := stamp(doc, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	return d.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Document, error) {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()

	sortNewest(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
