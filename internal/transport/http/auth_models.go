package http

import (
	"time"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
)

// FailResponse is the generic error payload returned by every endpoint.
type FailResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"invalid email or password"`
}

// AuthUser is the sanitized user representation returned by auth endpoints.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Name      string    `json:"name" example:"Asha Rao"`
	Email     string    `json:"email" example:"user@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
}

func newAuthUser(u *domain.User) AuthUser {
	return AuthUser{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest carries the signup fields.
type RegisterRequest struct {
	Name     string `json:"name" example:"Asha Rao"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"StrongPass!23"`
}

// LoginRequest carries the email login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"StrongPass!23"`
}

// GoogleLoginRequest carries the Google ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CheckEmailRequest asks whether an account exists for the address.
type CheckEmailRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ForgotPasswordRequest starts the OTP reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// VerifyOTPRequest redeems the mailed 6-digit code.
type VerifyOTPRequest struct {
	Email string `json:"email" example:"user@example.com"`
	OTP   string `json:"otp" example:"123456"`
}

// ResetPasswordRequest commits the new password using the mailed token.
type ResetPasswordRequest struct {
	Token    string `json:"token" example:"a3f1...64 hex chars...9b"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"NewPass1!"`
}
