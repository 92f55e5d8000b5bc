package app

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/database"
	"github.com/tech-arch1tect/sparkauth/handlers"
	"github.com/tech-arch1tect/sparkauth/middleware/authgate"
	"github.com/tech-arch1tect/sparkauth/middleware/ratelimit"
	"github.com/tech-arch1tect/sparkauth/openapi"
	"github.com/tech-arch1tect/sparkauth/server"
	"github.com/tech-arch1tect/sparkauth/services/account"
	"github.com/tech-arch1tect/sparkauth/services/jwt"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/mail"
	"github.com/tech-arch1tect/sparkauth/services/metrics"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/fx"
)

const Version = "1.0.0"

type AppBuilder struct {
	config     *config.Config
	logger     *logging.Service
	mailClient mail.Client
	listen     bool
	fxOptions  []fx.Option
	errors     []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{listen: true}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithLogger(logger *logging.Service) *AppBuilder {
	b.logger = logger
	return b
}

// WithMailClient replaces the transport picked from MAIL_DRIVER.
func (b *AppBuilder) WithMailClient(client mail.Client) *AppBuilder {
	b.mailClient = client
	return b
}

// WithoutListener builds an app whose HTTP handler is served by the caller,
// typically through httptest.
func (b *AppBuilder) WithoutListener() *AppBuilder {
	b.listen = false
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
	}

	if b.config == nil {
		b.WithAutoConfig()
		if len(b.errors) > 0 {
			return nil, errors.Join(b.errors...)
		}
	} else if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := b.logger
	if logger == nil {
		var err error
		if logger, err = logging.NewFromConfig(b.config); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	app := &App{config: b.config, logger: logger}

	options := b.buildFxOptions(logger)
	options = append(options, fx.Populate(&app.server, &app.stores, &app.api))

	app.fx = fx.New(options...)
	if err := app.fx.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, errors.New(msg))
}

func (b *AppBuilder) buildFxOptions(logger *logging.Service) []fx.Option {
	options := []fx.Option{
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.NopLogger,
		database.Module,
		jwt.Options,
		metrics.Module,
		ratelimit.Module,
		account.Module,
		server.NewProvider(),
		fx.Provide(provideGate),
		fx.Provide(handlers.New),
		fx.Provide(provideOpenAPI),
		fx.Invoke(registerRoutes),
	}

	if b.mailClient != nil {
		client := b.mailClient
		options = append(options, fx.Provide(func(cfg *config.Config, logger *logging.Service) (*mail.Service, error) {
			return mail.NewServiceWithClient(cfg, logger, client)
		}))
	} else {
		options = append(options, mail.Module)
	}

	if b.listen {
		options = append(options, fx.Invoke(server.Lifecycle))
	}

	return append(options, b.fxOptions...)
}

func provideGate(sessions *jwt.Service, userStore users.Store, logger *logging.Service) *authgate.Gate {
	return authgate.New(sessions, userStore, logger)
}

func provideOpenAPI(cfg *config.Config) *openapi.OpenAPI {
	api := openapi.New(cfg.App.Name+" API", Version).
		Description("Account registration, sessions, email verification and password recovery.")
	if cfg.App.URL != "" {
		api.Server(cfg.App.URL, cfg.App.Environment)
	}
	return api
}

type routeParams struct {
	fx.In

	Config  *config.Config
	Server  *server.Server
	Handler *handlers.Handler
	Gate    *authgate.Gate
	Limits  *ratelimit.Limits
	OpenAPI *openapi.OpenAPI
	Metrics *metrics.Service
}

func registerRoutes(p routeParams) {
	if p.Config.Metrics.Enabled {
		p.Server.Use(p.Metrics.Middleware())
		p.Server.Get(p.Config.Metrics.Path, echo.WrapHandler(p.Metrics.Handler()))
	}

	p.Handler.Routes(p.Server.Group(handlers.APIPrefix), p.Gate, p.Limits, p.OpenAPI)
}
