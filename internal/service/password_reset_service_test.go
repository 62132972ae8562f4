package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
	"github.com/loanmate-platform/loanmate-api/internal/repository/ports"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type fakeTokenStore struct {
	entries map[string]ports.TokenEntry
	now     func() time.Time

	putErr    error
	getErr    error
	deleteErr error
}

func newFakeTokenStore(now func() time.Time) *fakeTokenStore {
	return &fakeTokenStore{entries: map[string]ports.TokenEntry{}, now: now}
}

func (f *fakeTokenStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[key] = ports.TokenEntry{Value: value, ExpiresAt: f.now().Add(ttl)}
	return nil
}

func (f *fakeTokenStore) Get(ctx context.Context, key string) (ports.TokenEntry, bool, error) {
	if f.getErr != nil {
		return ports.TokenEntry{}, false, f.getErr
	}
	entry, ok := f.entries[key]
	return entry, ok, nil
}

func (f *fakeTokenStore) GetIfLive(ctx context.Context, key string) (string, bool, error) {
	entry, ok := f.entries[key]
	if !ok || f.now().After(entry.ExpiresAt) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, key)
	return nil
}

type fakeResetMailer struct {
	otpEmails []string
	otps      []string
	otpErr    error

	linkEmails []string
	links      []string
	linkErr    error

	confirmEmails []string
	confirmErr    error
}

func (f *fakeResetMailer) SendOTP(ctx context.Context, email, otp string) error {
	f.otpEmails = append(f.otpEmails, email)
	f.otps = append(f.otps, otp)
	return f.otpErr
}

func (f *fakeResetMailer) SendResetLink(ctx context.Context, email, link string) error {
	f.linkEmails = append(f.linkEmails, email)
	f.links = append(f.links, link)
	return f.linkErr
}

func (f *fakeResetMailer) SendResetConfirmation(ctx context.Context, email string) error {
	f.confirmEmails = append(f.confirmEmails, email)
	return f.confirmErr
}

func newResetServiceForTests(users *fakeUserRepo, tokens *fakeTokenStore, mailer *fakeResetMailer, now func() time.Time) *PasswordResetService {
	svc := NewPasswordResetService(users, tokens, mailer, "https://app.example.com", 0, 0)
	if now != nil {
		svc.now = now
	}
	return svc
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRequestOTP(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("stores code and mails it", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{}
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, mailer, fixedClock(base))

		if err := svc.RequestOTP(context.Background(), " User@Example.com "); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		entry, ok := tokens.entries["user@example.com"]
		if !ok {
			t.Fatal("expected OTP stored under normalized email")
		}
		if len(entry.Value) != 6 || strings.Trim(entry.Value, "0123456789") != "" {
			t.Fatalf("OTP should be 6 digits, got %q", entry.Value)
		}
		if got, want := entry.ExpiresAt, base.Add(10*time.Minute); !got.Equal(want) {
			t.Fatalf("expiry %s, want %s", got, want)
		}
		if len(mailer.otps) != 1 || mailer.otps[0] != entry.Value {
			t.Fatalf("mailed OTP should match stored one, got %v", mailer.otps)
		}
		if mailer.otpEmails[0] != "user@example.com" {
			t.Fatalf("unexpected recipient %q", mailer.otpEmails[0])
		}
	})

	t.Run("overwrites a previous code", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{}
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, mailer, fixedClock(base))

		if err := svc.RequestOTP(context.Background(), "user@example.com"); err != nil {
			t.Fatalf("first request: %v", err)
		}
		first := tokens.entries["user@example.com"].Value
		if err := svc.RequestOTP(context.Background(), "user@example.com"); err != nil {
			t.Fatalf("second request: %v", err)
		}
		if len(mailer.otps) != 2 {
			t.Fatalf("expected two mails, got %d", len(mailer.otps))
		}
		if tokens.entries["user@example.com"].Value != mailer.otps[1] {
			t.Fatal("store should hold the latest code")
		}
		_ = first // codes may collide by chance; only the stored/mailed pairing matters
	})

	t.Run("rejects bad email", func(t *testing.T) {
		svc := newResetServiceForTests(&fakeUserRepo{}, newFakeTokenStore(fixedClock(base)), &fakeResetMailer{}, fixedClock(base))

		if err := svc.RequestOTP(context.Background(), ""); !errors.Is(err, ErrEmailRequired) {
			t.Fatalf("expected ErrEmailRequired, got %v", err)
		}
		if err := svc.RequestOTP(context.Background(), "not-an-email"); !errors.Is(err, ErrEmailInvalid) {
			t.Fatalf("expected ErrEmailInvalid, got %v", err)
		}
	})

	t.Run("delivery failure keeps the code live", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{otpErr: errors.New("smtp down")}
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, mailer, fixedClock(base))

		err := svc.RequestOTP(context.Background(), "user@example.com")
		if !errors.Is(err, ErrDeliveryFailed) {
			t.Fatalf("expected ErrDeliveryFailed, got %v", err)
		}
		if _, ok := tokens.entries["user@example.com"]; !ok {
			t.Fatal("OTP should survive a failed send so the user can retry")
		}
	})
}

func TestVerifyOTP(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	seed := func(tokens *fakeTokenStore, code string, expiresAt time.Time) {
		tokens.entries["user@example.com"] = ports.TokenEntry{Value: code, ExpiresAt: expiresAt}
	}

	t.Run("success issues grant and consumes code", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{}
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, mailer, fixedClock(base))
		seed(tokens, "123456", base.Add(5*time.Minute))

		if err := svc.VerifyOTP(context.Background(), "User@Example.com", "123456"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, ok := tokens.entries["user@example.com"]; ok {
			t.Fatal("OTP should be deleted after use")
		}
		grant, ok := tokens.entries["reset_user@example.com"]
		if !ok {
			t.Fatal("expected reset grant stored")
		}
		if len(grant.Value) != 64 {
			t.Fatalf("grant token should be 64 hex chars, got %d", len(grant.Value))
		}
		if got, want := grant.ExpiresAt, base.Add(30*time.Minute); !got.Equal(want) {
			t.Fatalf("grant expiry %s, want %s", got, want)
		}
		if len(mailer.links) != 1 {
			t.Fatalf("expected one reset link mail, got %d", len(mailer.links))
		}
		wantLink := fmt.Sprintf("https://app.example.com/reset-password?token=%s&email=user%%40example.com", grant.Value)
		if mailer.links[0] != wantLink {
			t.Fatalf("link %q, want %q", mailer.links[0], wantLink)
		}
	})

	t.Run("replay fails after success", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, &fakeResetMailer{}, fixedClock(base))
		seed(tokens, "123456", base.Add(5*time.Minute))

		if err := svc.VerifyOTP(context.Background(), "user@example.com", "123456"); err != nil {
			t.Fatalf("first verify: %v", err)
		}
		if err := svc.VerifyOTP(context.Background(), "user@example.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
			t.Fatalf("expected ErrOTPNotFound on replay, got %v", err)
		}
	})

	t.Run("no code on file", func(t *testing.T) {
		svc := newResetServiceForTests(&fakeUserRepo{}, newFakeTokenStore(fixedClock(base)), &fakeResetMailer{}, fixedClock(base))

		if err := svc.VerifyOTP(context.Background(), "user@example.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
			t.Fatalf("expected ErrOTPNotFound, got %v", err)
		}
	})

	t.Run("expired code is reported and purged", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, &fakeResetMailer{}, fixedClock(base))
		seed(tokens, "123456", base.Add(-time.Second))

		if err := svc.VerifyOTP(context.Background(), "user@example.com", "123456"); !errors.Is(err, ErrOTPExpired) {
			t.Fatalf("expected ErrOTPExpired, got %v", err)
		}
		if _, ok := tokens.entries["user@example.com"]; ok {
			t.Fatal("expired OTP should be removed")
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{}
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, mailer, fixedClock(base))
		seed(tokens, "123456", base.Add(5*time.Minute))

		if err := svc.VerifyOTP(context.Background(), "user@example.com", "654321"); !errors.Is(err, ErrOTPMismatch) {
			t.Fatalf("expected ErrOTPMismatch, got %v", err)
		}
		if _, ok := tokens.entries["user@example.com"]; !ok {
			t.Fatal("a wrong guess must not consume the code")
		}
		if len(mailer.links) != 0 {
			t.Fatal("no reset link should be sent on mismatch")
		}
	})
}

func TestResetPassword(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	seedGrant := func(tokens *fakeTokenStore, token string, expiresAt time.Time) {
		tokens.entries["reset_user@example.com"] = ports.TokenEntry{Value: token, ExpiresAt: expiresAt}
	}

	t.Run("success updates hash and burns grant", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{}
		users := &fakeUserRepo{findByEmailResult: &domain.User{ID: userID, Email: "user@example.com"}}
		svc := newResetServiceForTests(users, tokens, mailer, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(10*time.Minute))

		if err := svc.ResetPassword(context.Background(), "User@Example.com", "grant-token", "NewPass1!"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if users.updatePasswordInput.id != userID {
			t.Fatalf("password updated for wrong user %s", users.updatePasswordInput.id)
		}
		if !util.VerifyPassword("NewPass1!", users.updatePasswordInput.hash) {
			t.Fatal("stored hash should verify against the new password")
		}
		if !users.updatePasswordInput.changedAt.Equal(base) {
			t.Fatalf("changedAt %s, want %s", users.updatePasswordInput.changedAt, base)
		}
		if _, ok := tokens.entries["reset_user@example.com"]; ok {
			t.Fatal("grant should be deleted after redemption")
		}
		if len(mailer.confirmEmails) != 1 || mailer.confirmEmails[0] != "user@example.com" {
			t.Fatalf("expected confirmation mail, got %v", mailer.confirmEmails)
		}
	})

	t.Run("confirmation mail failure does not fail the reset", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		mailer := &fakeResetMailer{confirmErr: errors.New("smtp down")}
		users := &fakeUserRepo{findByEmailResult: &domain.User{ID: userID, Email: "user@example.com"}}
		svc := newResetServiceForTests(users, tokens, mailer, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(10*time.Minute))

		if err := svc.ResetPassword(context.Background(), "user@example.com", "grant-token", "NewPass1!"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if users.updatePasswordInput.hash == "" {
			t.Fatal("password should still be updated")
		}
	})

	t.Run("no grant", func(t *testing.T) {
		svc := newResetServiceForTests(&fakeUserRepo{}, newFakeTokenStore(fixedClock(base)), &fakeResetMailer{}, fixedClock(base))

		err := svc.ResetPassword(context.Background(), "user@example.com", "grant-token", "NewPass1!")
		if !errors.Is(err, ErrResetGrantNotFound) {
			t.Fatalf("expected ErrResetGrantNotFound, got %v", err)
		}
	})

	t.Run("expired grant", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, &fakeResetMailer{}, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(-time.Second))

		err := svc.ResetPassword(context.Background(), "user@example.com", "grant-token", "NewPass1!")
		if !errors.Is(err, ErrResetGrantExpired) {
			t.Fatalf("expected ErrResetGrantExpired, got %v", err)
		}
		if _, ok := tokens.entries["reset_user@example.com"]; ok {
			t.Fatal("expired grant should be removed")
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		svc := newResetServiceForTests(&fakeUserRepo{}, tokens, &fakeResetMailer{}, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(10*time.Minute))

		err := svc.ResetPassword(context.Background(), "user@example.com", "forged", "NewPass1!")
		if !errors.Is(err, ErrResetTokenMismatch) {
			t.Fatalf("expected ErrResetTokenMismatch, got %v", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		users := &fakeUserRepo{}
		svc := newResetServiceForTests(users, tokens, &fakeResetMailer{}, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(10*time.Minute))

		err := svc.ResetPassword(context.Background(), "user@example.com", "grant-token", "alllowercase1")
		if !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
		}
		if users.updatePasswordInput.hash != "" {
			t.Fatal("no update should happen for a weak password")
		}
		if _, ok := tokens.entries["reset_user@example.com"]; !ok {
			t.Fatal("grant should survive a weak-password attempt")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		tokens := newFakeTokenStore(fixedClock(base))
		users := &fakeUserRepo{findByEmailErr: sql.ErrNoRows}
		svc := newResetServiceForTests(users, tokens, &fakeResetMailer{}, fixedClock(base))
		seedGrant(tokens, "grant-token", base.Add(10*time.Minute))

		err := svc.ResetPassword(context.Background(), "user@example.com", "grant-token", "NewPass1!")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newResetServiceForTests(&fakeUserRepo{}, newFakeTokenStore(fixedClock(base)), &fakeResetMailer{}, fixedClock(base))

		for _, args := range [][3]string{
			{"", "tok", "NewPass1!"},
			{"user@example.com", "", "NewPass1!"},
			{"user@example.com", "tok", ""},
		} {
			err := svc.ResetPassword(context.Background(), args[0], args[1], args[2])
			if !errors.Is(err, ErrEmailRequired) {
				t.Fatalf("args %v: expected ErrEmailRequired, got %v", args, err)
			}
		}
	})
}
