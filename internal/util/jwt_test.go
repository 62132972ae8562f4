package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, expiresAt, err := manager.Generate(userID, "asha@example.com", "Asha")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry in %s", until)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "asha@example.com" || claims.Name != "Asha" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).Generate(uuid.New(), "a@example.com", "A")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestJWTExpired(t *testing.T) {
	manager := NewJWTManager("secret", -time.Minute)
	token, _, err := manager.Generate(uuid.New(), "a@example.com", "A")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.Parse(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTManager("secret", time.Hour).Parse("not.a.token"); err == nil {
		t.Fatal("garbage input must not parse")
	}
}
