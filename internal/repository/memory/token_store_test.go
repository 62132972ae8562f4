package memory

import (
	"context"
	"testing"
	"time"
)

func TestTokenStorePutAndGetIfLive(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	if err := store.Put(ctx, "user@example.com", "123456", 10*time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	value, ok, err := store.GetIfLive(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetIfLive returned error: %v", err)
	}
	if !ok || value != "123456" {
		t.Fatalf("expected live value 123456, got %q (ok=%v)", value, ok)
	}
}

func TestTokenStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	_ = store.Put(ctx, "user@example.com", "111111", 10*time.Minute)
	_ = store.Put(ctx, "user@example.com", "222222", 10*time.Minute)

	value, ok, _ := store.GetIfLive(ctx, "user@example.com")
	if !ok || value != "222222" {
		t.Fatalf("expected newest value to win, got %q (ok=%v)", value, ok)
	}
}

func TestTokenStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	_ = store.Put(ctx, "user@example.com", "123456", 10*time.Minute)

	current = current.Add(10*time.Minute + time.Second)

	if _, ok, _ := store.GetIfLive(ctx, "user@example.com"); ok {
		t.Fatal("expected expired entry to be treated as absent")
	}

	// The raw Get no longer sees it either: the lazy eviction removed it.
	if _, ok, _ := store.Get(ctx, "user@example.com"); ok {
		t.Fatal("expected lazy eviction to have removed the entry")
	}
}

func TestTokenStoreGetReturnsExpiredEntry(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	_ = store.Put(ctx, "user@example.com", "123456", 10*time.Minute)
	current = current.Add(time.Hour)

	entry, ok, _ := store.Get(ctx, "user@example.com")
	if !ok {
		t.Fatal("expected raw Get to return the expired entry")
	}
	if entry.Value != "123456" {
		t.Fatalf("expected stored value, got %q", entry.Value)
	}
	if !current.After(entry.ExpiresAt) {
		t.Fatal("expected entry to be past its expiry")
	}
}

func TestTokenStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	_ = store.Put(ctx, "reset_user@example.com", "token", 30*time.Minute)
	if err := store.Delete(ctx, "reset_user@example.com"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "reset_user@example.com"); ok {
		t.Fatal("expected entry to be gone after Delete")
	}
}
