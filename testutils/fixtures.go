package testutils

import (
	"time"

	"github.com/tech-arch1tect/sparkauth/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "TechSpark",
			Environment: "test",
			URL:         "http://localhost:8000",
			ClientURL:   "http://localhost:3000",
		},
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: "0",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Auth: config.AuthConfig{
			BcryptCost:              bcrypt.MinCost,
			MinPasswordLength:       6,
			TokenBytes:              64,
			VerificationTokenExpiry: 24 * time.Hour,
			ResetTokenExpiry:        time.Hour,
			DefaultPhoto:            "https://example.org/avatar.png",
			DefaultBio:              "I am a new user.",
		},
		JWT: config.JWTConfig{
			SecretKey: "k9f2m4q8w1z7x3c5v6b0n8m2l4j6h1g3",
			Expiry:    30 * 24 * time.Hour,
			Issuer:    "sparkauth-test",
		},
		Cookie: config.CookieConfig{
			Name:     "token",
			Secure:   true,
			SameSite: "none",
		},
		Mail: config.MailConfig{
			Driver:      "log",
			Host:        "localhost",
			Port:        587,
			FromAddress: "noreply@techspark.dev",
			FromName:    "TechSpark",
			ReplyTo:     "noreply@noreply.com",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
			Store:   "memory",
		},
		Metrics: config.MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}

var TestPasswords = struct {
	Valid    string
	Other    string
	TooShort string
}{
	Valid:    "secret1",
	Other:    "another-pass",
	TooShort: "abc",
}
