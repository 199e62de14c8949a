package pagination

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTTL is how long a session survives without being looked up.
const DefaultIdleTTL = 30 * time.Minute

// ErrSessionNotFound indicates an unknown or expired session id.
var ErrSessionNotFound = errors.New("pagination: session not found")

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry hands out sessions that share one searcher. Sessions not looked up
// for longer than the idle TTL are dropped on the next Create or Get.
type Registry struct {
	searcher Searcher
	pageSize int

	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry constructs an empty registry with DefaultIdleTTL.
func NewRegistry(searcher Searcher, pageSize int) *Registry {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Registry{
		searcher: searcher,
		pageSize: pageSize,
		sessions: make(map[string]*entry),
		ttl:      DefaultIdleTTL,
		now:      time.Now,
	}
}

// WithIdleTTL overrides the idle expiry. Non-positive values keep the current
// TTL.
func (r *Registry) WithIdleTTL(ttl time.Duration) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

// WithClock overrides the time source. Intended for tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// Create registers a new idle session.
func (r *Registry) Create() *Session {
	session := NewSession(uuid.NewString(), r.searcher, r.pageSize)

	r.mu.Lock()
	now := r.now()
	r.gcLocked(now)
	r.sessions[session.ID] = &entry{session: session, lastSeen: now}
	r.mu.Unlock()

	return session
}

// Get returns the session for id and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.gcLocked(now)
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

// Delete drops a session and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len reports the number of registered sessions, expired ones included until
// the next sweep.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) gcLocked(now time.Time) {
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
