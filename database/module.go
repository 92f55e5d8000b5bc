package database

import (
	"context"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/tokens"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideStoresFx),
	fx.Provide(
		func(s *Stores) users.Store { return s.Users },
		func(s *Stores) tokens.Store { return s.Tokens },
	),
)

func ProvideStoresFx(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service) (*Stores, error) {
	stores, err := OpenStores(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: stores.Close,
	})
	return stores, nil
}
