package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dfiliuk-tech/hw-2/pkg/db"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

// Session store backends.
const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

// Config is the demo server configuration, read from the environment.
type Config struct {
	Addr          string   `env:"APP_ADDR" envDefault:":8080"`
	Env           string   `env:"APP_ENV" envDefault:"development"`
	VerboseErrors bool     `env:"APP_VERBOSE_ERRORS" envDefault:"false"`
	LoginPath     string   `env:"APP_LOGIN_PATH" envDefault:"/login"`
	PublicRoutes  []string `env:"APP_PUBLIC_ROUTES" envDefault:"/login,/logout" envSeparator:","`

	Log      logger.Config
	Database db.Config

	SessionStore  string `env:"SESSION_STORE" envDefault:"memory"`
	Redis         session.RedisConfig
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"__sid"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSecure bool          `env:"SESSION_SECURE" envDefault:"false"`
	CookieSecret  string        `env:"COOKIE_SECRET"`

	CSRFTokenName string        `env:"CSRF_TOKEN_NAME" envDefault:"csrf_token"`
	CSRFTokenTTL  time.Duration `env:"CSRF_TOKEN_TTL" envDefault:"1h"`

	MetricsEnabled  bool          `env:"METRICS_ENABLED" envDefault:"true"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// loadConfig reads Config from the environment.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error getting env configs: %w", err)
	}
	if cfg.SessionStore != storeMemory && cfg.SessionStore != storeRedis {
		return Config{}, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}
	return cfg, nil
}
