package geocode

import (
	"context"
	"sync"

	"github.com/petpalfinder/backend/internal/models"
)

// Store holds resolved coordinates by trimmed query. Entries never expire.
type Store interface {
	Get(ctx context.Context, key string) (models.Coordinate, bool, error)
	Set(ctx context.Context, key string, coord models.Coordinate) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Coordinate
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.Coordinate)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (models.Coordinate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coord, ok := s.items[key]
	return coord, ok, nil
}

// Set implements Store. Existing entries are left as they are.
func (s *MemoryStore) Set(_ context.Context, key string, coord models.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		s.items[key] = coord
	}
	return nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
