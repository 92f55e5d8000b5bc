package logging

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Paths listed in skipPaths
// (health checks, metrics scrapes) are not logged.
func RequestLogger(logger *Service, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			_, ok := skip[c.Request().URL.Path]
			return ok
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := requestFields(v)

			switch {
			case v.Status >= 500:
				logger.Error("server error", fields...)
			case v.Status >= 400:
				logger.Warn("client error", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	})
}

func requestFields(v middleware.RequestLoggerValues) []zap.Field {
	fields := []zap.Field{
		zap.String("method", v.Method),
		zap.String("uri", v.URI),
		zap.Int("status", v.Status),
		zap.Duration("latency", v.Latency),
		zap.String("remote_ip", v.RemoteIP),
	}

	if v.UserAgent != "" {
		ua := useragent.Parse(v.UserAgent)
		fields = append(fields,
			zap.String("browser", ua.Name),
			zap.String("os", ua.OS),
			zap.Bool("bot", ua.Bot),
		)
	}

	if v.Error != nil {
		fields = append(fields, zap.Error(v.Error))
	}
	return fields
}
