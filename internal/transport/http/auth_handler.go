package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loanmate-platform/loanmate-api/internal/service"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.POST("/google", handler.loginWithGoogle)
	group.POST("/check-email", handler.checkEmail)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("Please provide name, email, and password"))
	}

	result, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameTooShort),
			errors.Is(err, service.ErrEmailInvalid),
			errors.Is(err, service.ErrPasswordTooSmall):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusBadRequest, util.Fail("Email address is already registered"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Server error during registration. Please try again."))
		}
	}

	return c.JSON(http.StatusCreated, util.OK("Account created successfully!").
		With("user", newAuthUser(result.User)).
		With("token", result.Token))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("Please provide email and password"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Fail("Invalid email or password"))
		case errors.Is(err, service.ErrPasswordLoginUnavailable):
			return c.JSON(http.StatusBadRequest, util.Fail("Please use Google login for this account"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Server error during login. Please try again."))
		}
	}

	return c.JSON(http.StatusOK, util.OK("Login successful").
		With("user", newAuthUser(result.User)).
		With("token", result.Token))
}

func (h *AuthHandler) loginWithGoogle(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.IDToken == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("id_token is required"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrGoogleTokenInvalid) {
			return c.JSON(http.StatusUnauthorized, util.Fail("Invalid Google token"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("Server error during login. Please try again."))
	}

	return c.JSON(http.StatusOK, util.OK("Login successful").
		With("user", newAuthUser(result.User)).
		With("token", result.Token))
}

func (h *AuthHandler) checkEmail(c echo.Context) error {
	var req CheckEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	exists, err := h.auth.CheckEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailRequired) {
			return c.JSON(http.StatusBadRequest, util.Fail("Email is required"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("Error checking email"))
	}

	return c.JSON(http.StatusOK, util.OK("").With("exists", exists))
}
