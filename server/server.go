package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(cfg.App.IsProduction(), logger)

	configureTrustedProxies(e, cfg.Server.TrustedProxies, logger)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		LogErrorFunc:    recovered,
	}))
	e.Use(logging.RequestLogger(logger, "/health", "/metrics"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{strings.TrimRight(cfg.App.ClientURL, "/")},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// configureTrustedProxies lets X-Forwarded-For decide the client IP only when
// the request comes from one of the listed proxies. Unparseable entries are
// skipped.
func configureTrustedProxies(e *echo.Echo, proxies []string, logger *logging.Service) {
	trust := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	explicit := 0

	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.Contains(proxy, "/") {
			ip := net.ParseIP(proxy)
			if ip == nil {
				logger.Warn("ignoring invalid trusted proxy", zap.String("proxy", proxy))
				continue
			}
			if ip.To4() != nil {
				proxy += "/32"
			} else {
				proxy += "/128"
			}
		}

		_, network, err := net.ParseCIDR(proxy)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy", zap.String("proxy", proxy), zap.Error(err))
			continue
		}
		trust = append(trust, echo.TrustIPRange(network))
		explicit++
	}

	if explicit == 0 {
		e.IPExtractor = echo.ExtractIPDirect()
		return
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(trust...)
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start blocks serving HTTP until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.Addr()), zap.String("env", s.cfg.App.Environment))

	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) Use(mw ...echo.MiddlewareFunc) {
	s.echo.Use(mw...)
}

func (s *Server) Get(path string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, mw...)
}

func (s *Server) Group(prefix string, mw ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, mw...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
