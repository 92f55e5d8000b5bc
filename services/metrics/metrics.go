package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sparkauth"

// Recorder counts account events such as "login" with outcome "success".
type Recorder interface {
	AuthEvent(event, outcome string)
}

type Nop struct{}

func (Nop) AuthEvent(string, string) {}

type Service struct {
	registry        *prometheus.Registry
	authEvents      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewService() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Account operations by event and outcome.",
		}, []string{"event", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		s.authEvents,
		s.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

func (s *Service) AuthEvent(event, outcome string) {
	s.authEvents.WithLabelValues(event, outcome).Inc()
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Middleware observes request latency labelled by the matched route
// template, so path parameters do not explode label cardinality.
func (s *Service) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			s.requestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
