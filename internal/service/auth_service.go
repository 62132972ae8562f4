package service

import (
	"context"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
	"github.com/loanmate-platform/loanmate-api/internal/repository/ports"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

// googleTokenValidator is swapped out in tests; the default hits Google's
// certificate endpoint.
type googleTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users ports.UserRepository
	jwt   *util.JWTManager

	googleAudience string
	validateGoogle googleTokenValidator
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func NewAuthService(users ports.UserRepository, jwtManager *util.JWTManager, googleAudience string) *AuthService {
	return &AuthService{
		users:          users,
		jwt:            jwtManager,
		googleAudience: googleAudience,
		validateGoogle: idtoken.Validate,
	}
}

// Register creates an email+password account. The database unique index on
// email arbitrates concurrent signups: exactly one insert wins, the loser
// surfaces ErrEmailAlreadyUsed.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = util.NormalizeEmail(email)
	password = strings.TrimSpace(password)

	if len(name) < 2 {
		return nil, ErrNameTooShort
	}
	if !util.ValidateEmail(email) {
		return nil, ErrEmailInvalid
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooSmall
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, name, email, &hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = util.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrPasswordLoginUnavailable
	}
	if !util.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// LoginWithGoogle validates a Google ID token and upserts the account keyed
// by the verified email claim.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (*AuthResult, error) {
	payload, err := s.validateGoogle(ctx, idTok, s.googleAudience)
	if err != nil {
		return nil, ErrGoogleTokenInvalid
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	email = util.NormalizeEmail(email)
	if !util.ValidateEmail(email) {
		return nil, ErrGoogleTokenInvalid
	}

	user, err := s.users.UpsertGoogleUser(ctx, email, name)
	if err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// CheckEmail reports whether an account exists for the address. The signup
// form uses it for inline validation.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = util.NormalizeEmail(email)
	if email == "" {
		return false, ErrEmailRequired
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Authenticate resolves a bearer token to its user record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, _, err := s.jwt.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
