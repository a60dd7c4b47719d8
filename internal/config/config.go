// apps/go-server/internal/config/config.go
//
// Process configuration, read from the environment after main has loaded
// any .env file.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the server.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`

	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieName    string        `env:"COOKIE_NAME" envDefault:"ojisan_session"`

	TileCount int           `env:"TILE_COUNT" envDefault:"16"`
	FadeDelay time.Duration `env:"FADE_DELAY" envDefault:"130ms"`
	FacesFile string        `env:"FACES_FILE"`
	WinVideo  string        `env:"WIN_VIDEO"`
	DailySalt string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	IdleTTL         time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.AppEnv == "production" }

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	var errs []error
	if c.TileCount < 2 {
		errs = append(errs, fmt.Errorf("TILE_COUNT must be at least 2, got %d", c.TileCount))
	}
	if c.FadeDelay <= 0 {
		errs = append(errs, errors.New("FADE_DELAY must be positive"))
	}
	if c.SweepInterval <= 0 || c.IdleTTL <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL and IDLE_TTL must be positive"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must not be empty"))
	}
	return errors.Join(errs...)
}
