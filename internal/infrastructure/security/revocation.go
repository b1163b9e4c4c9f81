package security

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore keeps revoked tokens in process memory.
// Entries are dropped lazily once their original expiry passes, so
// the set does not grow past the working set of live tokens.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records the token until its ttl elapses.
func (s *MemoryRevocationStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = s.now().Add(ttl)
	return nil
}

// IsRevoked reports whether the token is currently blacklisted.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		s.mu.Lock()
		delete(s.entries, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked tokens, including expired ones
// not yet swept.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
