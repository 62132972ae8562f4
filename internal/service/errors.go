package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// The services surface a closed set of sentinel errors; handlers map them
// onto HTTP statuses with errors.Is and never leak driver errors to clients.
var (
	ErrEmailInvalid     = errors.New("please enter a valid email address")
	ErrEmailRequired    = errors.New("email is required")
	ErrNameTooShort     = errors.New("name must be at least 2 characters long")
	ErrPasswordTooSmall = errors.New("password must be at least 6 characters long")
	ErrPasswordTooWeak  = errors.New("password must be at least 8 characters with uppercase, lowercase, number, and special character")

	ErrEmailAlreadyUsed         = errors.New("user already exists with this email address")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrPasswordLoginUnavailable = errors.New("please use Google login for this account")
	ErrGoogleTokenInvalid       = errors.New("invalid google token")
	ErrUserNotFound             = errors.New("user not found")

	ErrOTPNotFound        = errors.New("OTP not found or expired. Please request a new one")
	ErrOTPExpired         = errors.New("OTP has expired. Please request a new one")
	ErrOTPMismatch        = errors.New("invalid OTP. Please check and try again")
	ErrResetGrantNotFound = errors.New("invalid or expired reset link. Please request a new one")
	ErrResetGrantExpired  = errors.New("reset link has expired. Please request a new one")
	ErrResetTokenMismatch = errors.New("invalid reset token")

	ErrDeliveryFailed = errors.New("failed to send email")

	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageTypeInvalid   = errors.New("message type must be user or bot")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
