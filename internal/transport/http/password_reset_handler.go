package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loanmate-platform/loanmate-api/internal/service"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type PasswordResetHandler struct {
	resets *service.PasswordResetService
}

func RegisterPasswordReset(e *echo.Echo, resets *service.PasswordResetService) {
	handler := &PasswordResetHandler{resets: resets}

	group := e.Group("/api/auth")
	group.POST("/forgot-password", handler.forgotPassword)
	group.POST("/verify-otp", handler.verifyOTP)
	group.POST("/reset-password", handler.resetPassword)
}

func (h *PasswordResetHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("Email is required"))
	}

	if err := h.resets.RequestOTP(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInvalid):
			return c.JSON(http.StatusBadRequest, util.Fail("Please enter a valid email address"))
		case errors.Is(err, service.ErrDeliveryFailed):
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to send OTP. Please try again."))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to send OTP. Please try again."))
		}
	}

	return c.JSON(http.StatusOK, util.OK("OTP sent to your email successfully!"))
}

func (h *PasswordResetHandler) verifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.Email == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("Email and OTP are required"))
	}

	if err := h.resets.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPNotFound):
			return c.JSON(http.StatusBadRequest, util.Fail("OTP not found or expired. Please request a new one."))
		case errors.Is(err, service.ErrOTPExpired):
			return c.JSON(http.StatusBadRequest, util.Fail("OTP has expired. Please request a new one."))
		case errors.Is(err, service.ErrOTPMismatch):
			return c.JSON(http.StatusBadRequest, util.Fail("Invalid OTP. Please check and try again."))
		case errors.Is(err, service.ErrDeliveryFailed):
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to verify OTP. Please try again."))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to verify OTP. Please try again."))
		}
	}

	return c.JSON(http.StatusOK, util.OK("OTP verified successfully! Password reset link sent to your email."))
}

func (h *PasswordResetHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if req.Token == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("Token, email, and password are required"))
	}

	if err := h.resets.ResetPassword(c.Request().Context(), req.Email, req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrResetGrantNotFound):
			return c.JSON(http.StatusBadRequest, util.Fail("Invalid or expired reset link. Please request a new one."))
		case errors.Is(err, service.ErrResetGrantExpired):
			return c.JSON(http.StatusBadRequest, util.Fail("Reset link has expired. Please request a new one."))
		case errors.Is(err, service.ErrResetTokenMismatch):
			return c.JSON(http.StatusBadRequest, util.Fail("Invalid reset token."))
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Fail("Password must be at least 8 characters with uppercase, lowercase, number, and special character."))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Fail("No account found for this email address."))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to reset password. Please try again."))
		}
	}

	return c.JSON(http.StatusOK, util.OK("Password reset successfully! You can now log in with your new password."))
}
