package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loanmate-platform/loanmate-api/internal/service"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type SubscribeHandler struct {
	subscriptions *service.SubscriptionService
}

func RegisterSubscribe(e *echo.Echo, subscriptions *service.SubscriptionService) {
	handler := &SubscribeHandler{subscriptions: subscriptions}
	e.POST("/api/subscribe", handler.subscribe)
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *SubscribeHandler) subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	message, err := h.subscriptions.Subscribe(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			return c.JSON(http.StatusBadRequest, util.Fail("Email is required"))
		case errors.Is(err, service.ErrEmailInvalid):
			return c.JSON(http.StatusBadRequest, util.Fail("Invalid email format"))
		case errors.Is(err, service.ErrDeliveryFailed):
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to send email."))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Internal server error"))
		}
	}

	return c.JSON(http.StatusOK, util.OK(message).With("email", util.NormalizeEmail(req.Email)))
}
