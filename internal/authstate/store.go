// Package authstate provides single-use anti-CSRF state tokens for the
// OAuth authorization redirect.
package authstate

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long an issued state remains valid. Authorization is a
// short interactive flow, so ten minutes covers it comfortably.
const DefaultTTL = 10 * time.Minute

const stateBytes = 24

// Store holds issued state tokens until they are consumed or expire. It is
// process-local on purpose: state only needs to survive one redirect round
// trip within a single deployment.
type Store struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// New creates a state store. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a cryptographically random state token, records it with
// an expiry, and returns it for embedding in the authorization URL.
func (s *Store) Issue() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	s.entries[state] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return state, nil
}

// Consume removes the state and reports whether it existed and had not yet
// expired. Removal happens unconditionally once looked up: a state value is
// never validated twice, regardless of outcome.
func (s *Store) Consume(state string) bool {
	s.mu.Lock()
	expiresAt, ok := s.entries[state]
	delete(s.entries, state)
	s.mu.Unlock()

	if !ok {
		return false
	}
	return !s.now().After(expiresAt)
}

// Len reports the number of outstanding states.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
