package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/config"
)

type Config struct {
	Store          Store
	Scope          string
	Rate           int
	Period         time.Duration
	CountMode      config.CountingMode
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = IPKeyGenerator(cfg.Scope)
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}
	if cfg.CountMode == "" {
		cfg.CountMode = config.CountAll
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)
			resetTime := time.Now().Add(cfg.Period)

			count, existingReset, exists := cfg.Store.Get(key)
			if exists {
				resetTime = existingReset
			}

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if count >= cfg.Rate {
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", strconv.Itoa(max(int(time.Until(resetTime).Seconds()), 1)))
				return cfg.OnLimitReached(c)
			}

			if cfg.CountMode == config.CountAll {
				count = cfg.Store.Increment(key, resetTime)
				header.Set("X-RateLimit-Remaining", strconv.Itoa(max(cfg.Rate-count, 0)))
				return next(c)
			}

			header.Set("X-RateLimit-Remaining", strconv.Itoa(max(cfg.Rate-count-1, 0)))
			err := next(c)

			if shouldCount(cfg.CountMode, responseStatus(c, err)) {
				cfg.Store.Increment(key, resetTime)
			}
			return err
		}
	}
}

func shouldCount(mode config.CountingMode, status int) bool {
	switch mode {
	case config.CountFailures:
		return status >= 400
	case config.CountSuccess:
		return status < 400
	}
	return true
}

// responseStatus is the status the client will see. Handler errors have not
// been written yet when the middleware regains control.
func responseStatus(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		if he, ok := err.(*echo.HTTPError); ok {
			return he.Code
		}
		return http.StatusInternalServerError
	}
	return c.Response().Status
}

func IPKeyGenerator(scope string) func(c echo.Context) string {
	return func(c echo.Context) string {
		ip := c.RealIP()
		if ip == "" || ip == "unknown" {
			ip = "fallback"
		}
		return "rate_limit:" + scope + ":" + ip
	}
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
}

func NewStore(cfg *config.RateLimitConfig) Store {
	switch cfg.Store {
	case "memory":
		fallthrough
	default:
		store := NewMemoryStore()
		store.StartCleanup(time.Minute)
		return store
	}
}

// Limits builds the per-route limiters used by the account routes. When
// rate limiting is disabled every limiter is a pass-through.
type Limits struct {
	Login          echo.MiddlewareFunc
	Register       echo.MiddlewareFunc
	ForgotPassword echo.MiddlewareFunc
}

func NewLimits(cfg *config.Config, store Store) *Limits {
	if !cfg.RateLimit.Enabled {
		pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		return &Limits{Login: pass, Register: pass, ForgotPassword: pass}
	}

	rl := cfg.RateLimit
	return &Limits{
		Login: Middleware(&Config{
			Store: store, Scope: "login",
			Rate: rl.LoginRate, Period: rl.LoginPeriod, CountMode: rl.LoginCountMode,
		}),
		Register: Middleware(&Config{
			Store: store, Scope: "register",
			Rate: rl.RegisterRate, Period: rl.RegisterPeriod, CountMode: config.CountSuccess,
		}),
		ForgotPassword: Middleware(&Config{
			Store: store, Scope: "forgot_password",
			Rate: rl.ForgotPasswordRate, Period: rl.ForgotPasswordPeriod, CountMode: config.CountAll,
		}),
	}
}
