package authgate

import (
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/zap"
)

// Gate holds the prebuilt chains used by the route table.
type Gate struct {
	authenticate Stage
}

func New(sessions SessionVerifier, finder UserFinder, logger *logging.Service) *Gate {
	return &Gate{authenticate: Authenticate(sessions, finder, logger.With(zap.String("component", "authgate")))}
}

func (g *Gate) Protected() echo.MiddlewareFunc {
	return Chain(g.authenticate)
}

func (g *Gate) AdminOnly() echo.MiddlewareFunc {
	return Chain(g.authenticate, RequireAdmin)
}

func (g *Gate) CreatorOnly() echo.MiddlewareFunc {
	return Chain(g.authenticate, RequireCreator)
}

func (g *Gate) VerifiedOnly() echo.MiddlewareFunc {
	return Chain(g.authenticate, RequireVerified)
}

// With builds a chain of Authenticate followed by the given predicates.
func (g *Gate) With(stages ...Stage) echo.MiddlewareFunc {
	return Chain(append([]Stage{g.authenticate}, stages...)...)
}
