package logging

import (
	"context"

	"github.com/tech-arch1tect/sparkauth/config"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewLoggingService),
)

func NewLoggingService(lc fx.Lifecycle, cfg *config.Config) (*Service, error) {
	logger, err := NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync on stdout/stderr fails on some platforms; nothing to recover.
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}
