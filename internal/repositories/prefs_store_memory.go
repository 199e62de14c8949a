package repositories

import (
	"context"
	"maps"
	"sync"
)

// InMemoryPrefsStore implements PrefsStore for tests and deployments without a
// database.
type InMemoryPrefsStore struct {
	mu    sync.RWMutex
	prefs map[string]map[string]string
}

// NewInMemoryPrefsStore returns an empty store.
func NewInMemoryPrefsStore() *InMemoryPrefsStore {
	return &InMemoryPrefsStore{prefs: make(map[string]map[string]string)}
}

// Load returns a copy of the stored preferences or ErrNotFound.
func (s *InMemoryPrefsStore) Load(_ context.Context, profileID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.prefs[profileID]
	if !ok || len(stored) == 0 {
		return nil, ErrNotFound
	}
	return maps.Clone(stored), nil
}

// Save replaces the stored preferences.
func (s *InMemoryPrefsStore) Save(_ context.Context, profileID string, prefs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[profileID] = maps.Clone(prefs)
	return nil
}

var _ PrefsStore = (*InMemoryPrefsStore)(nil)
