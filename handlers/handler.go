// Package handlers adapts the account service to the HTTP routes under
// /api/v1.
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/server"
	"github.com/tech-arch1tect/sparkauth/services/account"
	"github.com/tech-arch1tect/sparkauth/services/jwt"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/users"
)

type Handler struct {
	accounts *account.Service
	sessions *jwt.Service
	logger   *logging.Service
}

func New(accounts *account.Service, sessions *jwt.Service, logger *logging.Service) *Handler {
	return &Handler{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse is the public profile returned after register and login,
// together with the session token also set as a cookie.
type SessionResponse struct {
	*users.User
	Token string `json:"token"`
}

var errBadBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, MessageResponse{Message: msg})
}

// fail answers account failures with their status and message. Anything
// else is unexpected and goes to the server's error handler with the
// handler's stack attached.
func fail(c echo.Context, err error) error {
	var accErr *account.Error
	if errors.As(err, &accErr) {
		return message(c, accErr.Status, accErr.Message)
	}
	return server.WithStack(err)
}

func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return errBadBody
	}
	return nil
}
