package memory

import (
	"context"
	"sync"
	"time"

	"github.com/loanmate-platform/loanmate-api/internal/repository/ports"
)

// TokenStore keeps ephemeral secrets in a process-local map. Entries die
// with the process; the reset flow tolerates that because everything stored
// here is short-lived and re-requestable.
type TokenStore struct {
	mu      sync.Mutex
	entries map[string]ports.TokenEntry

	now func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		entries: make(map[string]ports.TokenEntry),
		now:     time.Now,
	}
}

func (s *TokenStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ports.TokenEntry{
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *TokenStore) Get(_ context.Context, key string) (ports.TokenEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *TokenStore) GetIfLive(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if s.now().After(entry.ExpiresAt) {
		// Lazy eviction: expired entries are dropped on first read.
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *TokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
