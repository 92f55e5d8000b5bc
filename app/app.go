package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/database"
	"github.com/tech-arch1tect/sparkauth/openapi"
	"github.com/tech-arch1tect/sparkauth/server"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	server *server.Server
	stores *database.Stores
	api    *openapi.OpenAPI
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the app and blocks until SIGINT or SIGTERM, then stops it
// within a 30 second grace period.
func (a *App) Run() error {
	if err := a.Start(context.Background()); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("failed to stop application gracefully", zap.Error(err))
		return err
	}
	return nil
}

func (a *App) Handler() http.Handler {
	return a.server.Echo()
}

func (a *App) Server() *server.Server {
	return a.server
}

func (a *App) Stores() *database.Stores {
	return a.stores
}

func (a *App) OpenAPI() *openapi.OpenAPI {
	return a.api
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}
