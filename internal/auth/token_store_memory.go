package auth

import (
	"context"
	"sync"
)

// NewInMemoryTokenStore returns a TokenStore that lives as long as the process.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{}
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu    sync.RWMutex
	token *AccessToken
}

// Load returns the stored token or ErrTokenNotFound.
func (s *InMemoryTokenStore) Load(_ context.Context) (AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return AccessToken{}, ErrTokenNotFound
	}
	return *s.token, nil
}

// Save replaces the stored token.
func (s *InMemoryTokenStore) Save(_ context.Context, token AccessToken) error {
	s.mu.Lock()
	s.token = &token
	s.mu.Unlock()
	return nil
}

// Clear removes the stored token.
func (s *InMemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
	return nil
}
