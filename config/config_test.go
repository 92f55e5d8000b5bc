package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p6q7r8s9t0u1v2w3x4y5z6"

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("JWT_SECRET_KEY", strongSecret)

	var cfg Config
	err := LoadConfig(&cfg)

	require.NoError(t, err)

	assert.Equal(t, "TechSpark", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "http://localhost:3000", cfg.App.ClientURL)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 64, cfg.Auth.TokenBytes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.VerificationTokenExpiry)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenExpiry)
	assert.Equal(t, "I am a new user.", cfg.Auth.DefaultBio)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "token", cfg.Cookie.Name)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, "none", cfg.Cookie.SameSite)
	assert.Equal(t, "log", cfg.Mail.Driver)
	assert.Equal(t, CountFailures, cfg.RateLimit.LoginCountMode)
	assert.False(t, cfg.App.IsProduction())
}

func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("APP_NAME", "Spark Test")
	os.Setenv("APP_ENV", "Production")
	os.Setenv("APP_CLIENT_URL", "https://spark.example.org")
	os.Setenv("SERVER_PORT", "9000")
	os.Setenv("DATABASE_DRIVER", "mongo")
	os.Setenv("DATABASE_DSN", "mongodb://localhost:27017")
	os.Setenv("AUTH_MIN_PASSWORD_LENGTH", "8")
	os.Setenv("JWT_SECRET_KEY", strongSecret)
	os.Setenv("JWT_EXPIRY", "2h")
	os.Setenv("MAIL_DRIVER", "smtp")

	var cfg Config
	err := LoadConfig(&cfg)

	require.NoError(t, err)

	assert.Equal(t, "Spark Test", cfg.App.Name)
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "https://spark.example.org", cfg.App.ClientURL)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "smtp", cfg.Mail.Driver)
}

func TestLoadConfig_CommaSeparatedValues(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("SERVER_TRUSTED_PROXIES", "192.168.1.1,10.0.0.1")
	os.Setenv("JWT_SECRET_KEY", strongSecret)

	var cfg Config
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, []string{"192.168.1.1", "10.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestValidateJWTConfig(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{name: "valid", secret: strongSecret},
		{name: "too short", secret: "short", wantErr: "at least 32 characters"},
		{name: "contains password", secret: "this-is-a-password-based-key-which-is-weak", wantErr: "weak patterns"},
		{name: "contains secret", secret: "my-secret-key-for-jwt-tokens-in-production", wantErr: "weak patterns"},
		{name: "contains change", secret: "please-change-this-signing-key-in-production", wantErr: "weak patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJWTConfig(&JWTConfig{SecretKey: tt.secret, Expiry: time.Hour})
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("non-positive expiry", func(t *testing.T) {
		err := validateJWTConfig(&JWTConfig{SecretKey: strongSecret})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expiry must be positive")
	})
}

func TestValidateDatabaseConfig(t *testing.T) {
	assert.NoError(t, validateDatabaseConfig(&DatabaseConfig{Driver: "postgres"}))
	assert.NoError(t, validateDatabaseConfig(&DatabaseConfig{Driver: "mongodb", MongoDatabase: "spark"}))

	err := validateDatabaseConfig(&DatabaseConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo database name is required")

	err = validateDatabaseConfig(&DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver: oracle")
}

func TestValidateCookieConfig(t *testing.T) {
	assert.NoError(t, validateCookieConfig(&CookieConfig{Name: "token", SameSite: "none", Secure: true}))
	assert.NoError(t, validateCookieConfig(&CookieConfig{Name: "token", SameSite: "Lax"}))
	assert.Error(t, validateCookieConfig(&CookieConfig{SameSite: "lax"}))
	assert.Error(t, validateCookieConfig(&CookieConfig{Name: "token", SameSite: "sometimes"}))
}

func TestLoadConfig_ValidationIntegration(t *testing.T) {
	t.Run("invalid JWT secret fails validation", func(t *testing.T) {
		clearEnvVars(t)
		os.Setenv("JWT_SECRET_KEY", "short")

		var cfg Config
		err := LoadConfig(&cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret key must be at least 32 characters long")
	})

	t.Run("unknown mail driver fails validation", func(t *testing.T) {
		clearEnvVars(t)
		os.Setenv("JWT_SECRET_KEY", strongSecret)
		os.Setenv("MAIL_DRIVER", "pigeon")

		var cfg Config
		err := LoadConfig(&cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported mail driver")
	})
}

func TestLoadConfig_NonConfigStruct(t *testing.T) {
	type CustomConfig struct {
		Name string `env:"SPARK_CUSTOM_NAME" envDefault:"default"`
	}

	var cfg CustomConfig
	err := LoadConfig(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Name)
}

func clearEnvVars(t *testing.T) {
	t.Helper()

	envVars := []string{
		"APP_NAME", "APP_ENV", "APP_URL", "APP_CLIENT_URL",
		"SERVER_PORT", "SERVER_HOST", "SERVER_TRUSTED_PROXIES",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
		"DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_AUTO_MIGRATE", "DATABASE_MONGO_DATABASE",
		"AUTH_MIN_PASSWORD_LENGTH", "AUTH_BCRYPT_COST",
		"JWT_SECRET_KEY", "JWT_EXPIRY", "JWT_ISSUER",
		"COOKIE_NAME", "COOKIE_SECURE", "COOKIE_SAME_SITE",
		"MAIL_DRIVER",
	}

	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}

	t.Cleanup(func() {
		for _, envVar := range envVars {
			os.Unsetenv(envVar)
		}
	})
}
