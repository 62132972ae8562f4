package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/loanmate-platform/loanmate-api/internal/util"
)

// WelcomeMailer is the slice of the mail transport the newsletter flow needs.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email string) error
}

// SubscriptionService handles newsletter signups. Nothing is stored; the
// whole subscription is the welcome mail.
type SubscriptionService struct {
	mailer WelcomeMailer
}

func NewSubscriptionService(mailer WelcomeMailer) *SubscriptionService {
	return &SubscriptionService{mailer: mailer}
}

// Subscribe validates the address and sends the welcome mail. Invalid input
// never reaches the mailer.
func (s *SubscriptionService) Subscribe(ctx context.Context, email, name string) (string, error) {
	email = util.NormalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	if !util.ValidateEmail(email) {
		return "", ErrEmailInvalid
	}

	if err := s.mailer.SendWelcome(ctx, email); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Friend"
	}
	return fmt.Sprintf("Thank you %s for subscribing!", name), nil
}
