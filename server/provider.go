package server

import (
	"context"

	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProvider() fx.Option {
	return fx.Options(
		fx.Provide(New),
	)
}

// Lifecycle starts serving once the fx app has started and drains
// connections on stop.
func Lifecycle(lc fx.Lifecycle, srv *Server, logger *logging.Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}
