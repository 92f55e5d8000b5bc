package account

import (
	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/jwt"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/mail"
	"github.com/tech-arch1tect/sparkauth/services/metrics"
	"github.com/tech-arch1tect/sparkauth/services/tokens"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config   *config.Config
	Users    users.Store
	Tokens   tokens.Store
	Sessions *jwt.Service
	Mail     *mail.Service
	Logger   *logging.Service
	Metrics  metrics.Recorder
}

func ProvideAccountService(p Params) *Service {
	return NewService(p.Config, p.Users, p.Tokens, p.Sessions, p.Mail, p.Logger, p.Metrics)
}

var Module = fx.Options(
	fx.Provide(ProvideAccountService),
)
