package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Cookie    CookieConfig    `envPrefix:"COOKIE_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"TechSpark"`
	Environment string `env:"ENV" envDefault:"development"`
	URL         string `env:"URL" envDefault:"http://localhost:8000"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
}

// IsProduction reports whether error responses should omit stack traces.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8000"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver         string        `env:"DRIVER" envDefault:"sqlite"`
	DSN            string        `env:"DSN" envDefault:"sparkauth.db"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	MongoDatabase  string        `env:"MONGO_DATABASE" envDefault:"techspark"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

type AuthConfig struct {
	BcryptCost              int           `env:"BCRYPT_COST" envDefault:"10"`
	MinPasswordLength       int           `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	TokenBytes              int           `env:"TOKEN_BYTES" envDefault:"64"`
	VerificationTokenExpiry time.Duration `env:"VERIFICATION_TOKEN_EXPIRY" envDefault:"24h"`
	ResetTokenExpiry        time.Duration `env:"RESET_TOKEN_EXPIRY" envDefault:"1h"`
	DefaultPhoto            string        `env:"DEFAULT_PHOTO" envDefault:"https://avatars.githubusercontent.com/u/19819005?v=4"`
	DefaultBio              string        `env:"DEFAULT_BIO" envDefault:"I am a new user."`
}

type JWTConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	Expiry    time.Duration `env:"EXPIRY" envDefault:"720h"`
	Issuer    string        `env:"ISSUER" envDefault:"sparkauth"`
}

type CookieConfig struct {
	Name     string `env:"NAME" envDefault:"token"`
	Secure   bool   `env:"SECURE" envDefault:"true"`
	SameSite string `env:"SAME_SITE" envDefault:"none"`
}

type MailConfig struct {
	Driver       string `env:"DRIVER" envDefault:"log"`
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"tls"`
	FromAddress  string `env:"FROM_ADDRESS" envDefault:"noreply@techspark.dev"`
	FromName     string `env:"FROM_NAME" envDefault:"TechSpark"`
	ReplyTo      string `env:"REPLY_TO" envDefault:"noreply@noreply.com"`
	TemplatesDir string `env:"TEMPLATES_DIR"`
}

type CountingMode string

const (
	CountAll      CountingMode = "all"
	CountFailures CountingMode = "failures"
	CountSuccess  CountingMode = "success"
)

type RateLimitConfig struct {
	Enabled              bool          `env:"ENABLED" envDefault:"true"`
	Store                string        `env:"STORE" envDefault:"memory"`
	LoginRate            int           `env:"LOGIN_RATE" envDefault:"5"`
	LoginPeriod          time.Duration `env:"LOGIN_PERIOD" envDefault:"1m"`
	LoginCountMode       CountingMode  `env:"LOGIN_COUNT_MODE" envDefault:"failures"`
	RegisterRate         int           `env:"REGISTER_RATE" envDefault:"10"`
	RegisterPeriod       time.Duration `env:"REGISTER_PERIOD" envDefault:"1h"`
	ForgotPasswordRate   int           `env:"FORGOT_PASSWORD_RATE" envDefault:"3"`
	ForgotPasswordPeriod time.Duration `env:"FORGOT_PASSWORD_PERIOD" envDefault:"15m"`
}

type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validateJWTConfig(&c.JWT); err != nil {
		return err
	}
	if err := validateDatabaseConfig(&c.Database); err != nil {
		return err
	}
	if err := validateCookieConfig(&c.Cookie); err != nil {
		return err
	}
	if c.Auth.MinPasswordLength < 1 {
		return errors.New("minimum password length must be positive")
	}
	if c.Auth.TokenBytes < 16 {
		return errors.New("token bytes must be at least 16")
	}
	switch c.Mail.Driver {
	case "smtp", "log":
	default:
		return fmt.Errorf("unsupported mail driver: %s (supported: smtp, log)", c.Mail.Driver)
	}
	return nil
}

var weakSecretPatterns = []string{"password", "secret", "test", "example", "default", "change"}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return errors.New("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakSecretPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("JWT secret key contains weak patterns")
		}
	}

	if cfg.Expiry <= 0 {
		return errors.New("JWT expiry must be positive")
	}
	return nil
}

func validateDatabaseConfig(cfg *DatabaseConfig) error {
	switch cfg.Driver {
	case "sqlite", "postgres", "postgresql", "mysql":
	case "mongo", "mongodb":
		if cfg.MongoDatabase == "" {
			return errors.New("mongo database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql, mongo)", cfg.Driver)
	}
	return nil
}

func validateCookieConfig(cfg *CookieConfig) error {
	if cfg.Name == "" {
		return errors.New("cookie name is required")
	}
	switch strings.ToLower(cfg.SameSite) {
	case "none":
		if !cfg.Secure {
			// browsers drop SameSite=None cookies without Secure
			log.Printf("cookie SameSite=None without Secure will be rejected by browsers")
		}
	case "lax", "strict":
	default:
		return fmt.Errorf("invalid cookie same-site mode: %s (supported: none, lax, strict)", cfg.SameSite)
	}
	return nil
}
