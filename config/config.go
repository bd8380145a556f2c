// Package config loads application configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DBConfig holds the datastore connection settings.
type DBConfig struct {
	Url             string        `envconfig:"URL" required:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

// SessionConfig holds session token settings.
type SessionConfig struct {
	Secret string        `envconfig:"SECRET_KEY" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// FundingConfig caps how much a single funding call may move. The cap is a
// boundary concern; the ledger engine itself only enforces the positive
// floor.
type FundingConfig struct {
	MaxAmountCents int64 `envconfig:"MAX_AMOUNT_CENTS" default:"1000000"`
}

// RateLimitConfig drives the global per-IP request limiter.
type RateLimitConfig struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// LoginThrottleConfig drives the per-identity login attempt throttle.
type LoginThrottleConfig struct {
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"10"`
	Window      time.Duration `envconfig:"WINDOW" default:"15m"`
}

// RedisConfig holds the redis connection settings backing the login
// throttle.
type RedisConfig struct {
	Addr string `envconfig:"ADDR" default:"localhost:6379"`
}

// AppConfig is the root configuration for the service.
type AppConfig struct {
	Env           string              `envconfig:"APP_ENV" default:"development"`
	Host          string              `envconfig:"APP_HOST" default:"localhost"`
	Port          int                 `envconfig:"APP_PORT" default:"3000"`
	DB            DBConfig            `envconfig:"DATABASE"`
	Session       SessionConfig       `envconfig:"SESSION"`
	Funding       FundingConfig       `envconfig:"FUNDING"`
	RateLimit     RateLimitConfig     `envconfig:"RATE_LIMIT"`
	LoginThrottle LoginThrottleConfig `envconfig:"LOGIN_THROTTLE"`
	Redis         RedisConfig         `envconfig:"REDIS"`
}

// Load reads configuration from the environment, first loading a .env file
// if one is present.
func Load(logger *slog.Logger) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on process environment")
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
