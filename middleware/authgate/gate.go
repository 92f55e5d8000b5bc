// Package authgate guards routes with an ordered list of stages. Each stage
// either lets the request through or ends it with an HTTP error; the first
// stage is always Authenticate, which resolves the session cookie to a user.
package authgate

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/server"
	"github.com/tech-arch1tect/sparkauth/services/jwt"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/zap"
)

const UserKey = "_authgate_user"

var (
	ErrNoSession     = echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, please login!")
	ErrBadSession    = echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed!")
	ErrUserGone      = echo.NewHTTPError(http.StatusNotFound, "User not found!")
	ErrAdminOnly     = echo.NewHTTPError(http.StatusForbidden, "Only admins allowed!")
	ErrCreatorOnly   = echo.NewHTTPError(http.StatusForbidden, "Only creator allowed!")
	ErrVerifiedOnly  = echo.NewHTTPError(http.StatusForbidden, "Please verify your email address!")
	errNotAuthorized = errors.New("authgate: no user on context")
)

// Stage returns nil to continue or an error to stop the request.
type Stage func(c echo.Context) error

type SessionVerifier interface {
	SessionToken(c echo.Context) string
	Verify(token string) (*jwt.Claims, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// Chain runs stages in order before the handler.
func Chain(stages ...Stage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, stage := range stages {
				if err := stage(c); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func Authenticate(sessions SessionVerifier, finder UserFinder, logger *logging.Service) Stage {
	return func(c echo.Context) error {
		token := sessions.SessionToken(c)
		if token == "" {
			return ErrNoSession
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			logger.Debug("session rejected", zap.Error(err), zap.String("remote_ip", c.RealIP()))
			return ErrBadSession
		}

		user, err := finder.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return ErrUserGone
			}
			return server.WithStack(err)
		}

		c.Set(UserKey, user)
		return nil
	}
}

func RequireAdmin(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return errNotAuthorized
	}
	if !user.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// RequireCreator admits creators and admins.
func RequireCreator(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return errNotAuthorized
	}
	if !user.IsCreator() {
		return ErrCreatorOnly
	}
	return nil
}

func RequireVerified(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return errNotAuthorized
	}
	if !user.IsVerified {
		return ErrVerifiedOnly
	}
	return nil
}

func CurrentUser(c echo.Context) *users.User {
	if user, ok := c.Get(UserKey).(*users.User); ok {
		return user
	}
	return nil
}
