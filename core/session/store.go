package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/sessionplanner/core/normalize"
)

// MemoryStore keeps sessions in memory keyed by a random UUID.
type MemoryStore struct {
	cfg  Config
	mu   sync.RWMutex
	data map[string]*Session
}

// NewMemoryStore returns an empty store whose sessions share cfg.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{cfg: cfg.withDefaults(), data: map[string]*Session{}}
}

// Create starts a new session showing form.
func (s *MemoryStore) Create(form normalize.FormInput) *Session {
	sess := New(uuid.NewString(), form, s.cfg)
	s.mu.Lock()
	s.data[sess.ID()] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with id or ErrNotFound.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session and reports whether it existed.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok
}

// IDs lists the stored session ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for id := range s.data {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Prune drops sessions idle for longer than maxIdle and returns how many were
// removed.
func (s *MemoryStore) Prune(maxIdle time.Duration) int {
	cutoff := s.cfg.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.data {
		if sess.IdleSince().Before(cutoff) {
			delete(s.data, id)
			n++
		}
	}
	return n
}
