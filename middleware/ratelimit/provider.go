package ratelimit

import (
	"context"

	"github.com/tech-arch1tect/sparkauth/config"
	"go.uber.org/fx"
)

func ProvideRateLimitStore(lc fx.Lifecycle, cfg *config.Config) Store {
	store := NewStore(&cfg.RateLimit)
	if closer, ok := store.(interface{ Close() }); ok {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				closer.Close()
				return nil
			},
		})
	}
	return store
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
	fx.Provide(NewLimits),
)
