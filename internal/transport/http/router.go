package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/loanmate-platform/loanmate-api/internal/util"
)

func NewRouter(allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	allowCredentials := true
	for _, origin := range allowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	registerLogging(e)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
		},
		AllowCredentials: allowCredentials,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, util.Envelope{
			"message":   "LoanMate API running successfully!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"endpoints": util.Envelope{
				"auth":        "/api/auth",
				"subscribe":   "/api/subscribe",
				"chatbot":     "/api/chatbot",
				"eligibility": "/api/eligibility",
			},
		})
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	e.GET("/api/test", func(c echo.Context) error {
		return c.JSON(http.StatusOK, util.OK("Backend is working!").
			With("timestamp", time.Now().UTC().Format(time.RFC3339)))
	})

	return e
}
