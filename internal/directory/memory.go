package directory

import (
	"context"
	"sync"

	"ai-planner/backend/internal/recovery"
)

// MemoryStore is an in-process Store that keeps records in insertion order. Used for local
// development (DIRECTORY_DRIVER=memory) and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	data  map[string]map[string]any
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

// FetchAll returns copies of the records of collection in insertion order.
func (s *MemoryStore) FetchAll(ctx context.Context, collection string) (recovery.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[cleanPath(collection)]
	if !ok {
		return recovery.Directory{}, nil
	}
	dir := make(recovery.Directory, 0, len(c.order))
	for _, id := range c.order {
		dir = append(dir, recovery.Record{ID: id, Fields: copyFields(c.data[id])})
	}
	return dir, nil
}

// Update merges fields into an existing record. Returns ErrRecordNotFound if it does not exist.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[cleanPath(collection)]
	if !ok {
		return ErrRecordNotFound
	}
	rec, ok := c.data[id]
	if !ok {
		return ErrRecordNotFound
	}
	for k, v := range fields {
		rec[k] = v
	}
	return nil
}

// Put replaces or appends the record.
func (s *MemoryStore) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cleanPath(collection)
	c, ok := s.collections[key]
	if !ok {
		c = &memCollection{data: make(map[string]map[string]any)}
		s.collections[key] = c
	}
	if _, exists := c.data[id]; !exists {
		c.order = append(c.order, id)
	}
	c.data[id] = copyFields(fields)
	return nil
}

// Ping reports only context cancellation.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
