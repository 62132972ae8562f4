package ports

import (
	"context"
	"time"
)

// TokenEntry is a stored ephemeral secret together with its expiry instant.
type TokenEntry struct {
	Value     string
	ExpiresAt time.Time
}

// TokenStore holds short-lived secrets keyed by string. Expiry is lazy: the
// store never sweeps in the background, callers observe expiry on read. The
// interface takes a context so a networked backend (Redis and friends) can
// replace the in-process map without touching the reset flow.
type TokenStore interface {
	// Put stores value under key with expiry now+ttl, replacing any
	// existing entry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the raw entry even when it has expired, so callers can
	// tell "expired" apart from "never existed".
	Get(ctx context.Context, key string) (TokenEntry, bool, error)
	// GetIfLive returns the value only while now <= expiry.
	GetIfLive(ctx context.Context, key string) (string, bool, error)
	// Delete removes the entry unconditionally.
	Delete(ctx context.Context, key string) error
}
