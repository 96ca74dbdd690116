package session

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often writes scan for expired sessions.
const sweepInterval = time.Minute

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryStore is an in-process Store, used when no Redis URL is configured
// and in tests.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	token := newToken()
	s.sessions[token] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return token, nil
}

// sweepLocked drops expired sessions that were never rotated or revoked.
func (s *MemoryStore) sweepLocked() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for token, entry := range s.sessions {
		if !now.Before(entry.expires) {
			delete(s.sessions, token)
		}
	}
}

func (s *MemoryStore) Rotate(_ context.Context, token string, ttl time.Duration) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	delete(s.sessions, token)
	if !ok || !s.now().Before(entry.expires) {
		return "", "", ErrNotFound
	}

	s.sweepLocked()
	next := newToken()
	s.sessions[next] = memoryEntry{userID: entry.userID, expires: s.now().Add(ttl)}
	return entry.userID, next, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
