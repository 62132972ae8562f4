package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/loanmate-platform/loanmate-api/internal/repository/ports"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

const (
	defaultOTPTTL        = 10 * time.Minute
	defaultResetGrantTTL = 30 * time.Minute

	// Reset grants live under a prefixed key so an OTP and a grant for the
	// same email never collide in the store.
	resetKeyPrefix = "reset_"
)

// ResetMailer is the slice of the mail transport the reset flow needs.
type ResetMailer interface {
	SendOTP(ctx context.Context, email, otp string) error
	SendResetLink(ctx context.Context, email, link string) error
	SendResetConfirmation(ctx context.Context, email string) error
}

// PasswordResetService drives the three-step reset handshake:
// request OTP -> verify OTP -> reset password. Each email has at most one
// live OTP and one live grant; new requests overwrite old state.
type PasswordResetService struct {
	users  ports.UserRepository
	tokens ports.TokenStore
	mailer ResetMailer

	frontendBaseURL string
	otpTTL          time.Duration
	grantTTL        time.Duration
	now             func() time.Time
}

func NewPasswordResetService(users ports.UserRepository, tokens ports.TokenStore, mailer ResetMailer, frontendBaseURL string, otpTTL, grantTTL time.Duration) *PasswordResetService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if grantTTL <= 0 {
		grantTTL = defaultResetGrantTTL
	}
	return &PasswordResetService{
		users:           users,
		tokens:          tokens,
		mailer:          mailer,
		frontendBaseURL: frontendBaseURL,
		otpTTL:          otpTTL,
		grantTTL:        grantTTL,
		now:             time.Now,
	}
}

// RequestOTP issues a fresh 6-digit code for the address and mails it. The
// code is stored before the send, so a delivery failure leaves a valid OTP
// behind; the caller simply retries the request. Whether an account exists
// for the address is deliberately not checked here.
func (s *PasswordResetService) RequestOTP(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	if !util.ValidateEmail(email) {
		return ErrEmailInvalid
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		return err
	}

	if err := s.tokens.Put(ctx, email, otp, s.otpTTL); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, otp); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyOTP consumes a live OTP and converts it into a reset grant. The OTP
// is single-use: on success it is deleted in the same step that stores the
// grant, so replaying the code fails with ErrOTPNotFound.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	email = util.NormalizeEmail(email)
	if email == "" || code == "" {
		return ErrEmailRequired
	}

	entry, ok, err := s.tokens.Get(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPNotFound
	}
	if s.now().After(entry.ExpiresAt) {
		_ = s.tokens.Delete(ctx, email)
		return ErrOTPExpired
	}
	if entry.Value != code {
		return ErrOTPMismatch
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.tokens.Put(ctx, resetKeyPrefix+email, token, s.grantTTL); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, email); err != nil {
		return err
	}

	link := s.resetLink(email, token)
	if err := s.mailer.SendResetLink(ctx, email, link); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// ResetPassword redeems a live grant and commits the new password hash. The
// grant is deleted once the hash is persisted; the confirmation mail after
// that point is best-effort and never rolls the change back.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	email = util.NormalizeEmail(email)
	if email == "" || token == "" || newPassword == "" {
		return ErrEmailRequired
	}

	key := resetKeyPrefix + email
	entry, ok, err := s.tokens.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetGrantNotFound
	}
	if s.now().After(entry.ExpiresAt) {
		_ = s.tokens.Delete(ctx, key)
		return ErrResetGrantExpired
	}
	if entry.Value != token {
		return ErrResetTokenMismatch
	}

	if err := util.ValidateResetPassword(newPassword); err != nil {
		return ErrPasswordTooWeak
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return err
	}

	_ = s.tokens.Delete(ctx, key)

	if err := s.mailer.SendResetConfirmation(ctx, email); err != nil {
		log.Printf("password reset confirmation mail to %s failed: %v", email, err)
	}
	return nil
}

func (s *PasswordResetService) resetLink(email, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.frontendBaseURL, token, url.QueryEscape(email))
}
