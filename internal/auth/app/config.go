package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "MINIBOSS_"

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`         // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`    // sqlite, mysql
	DatabaseFile   string `env:"DATABASE_FILE" envDefault:"miniboss.db"` // sqlite only
	MySQLDSN       string `env:"MYSQL_DSN"`                              // user:pass@tcp(host:3306)/db
	PepperFile     string `env:"PEPPER_FILE" envDefault:"pepper"`        // created on first start

	PendingTTL time.Duration `env:"PENDING_TTL" envDefault:"10m"`
	CodeTTL    time.Duration `env:"CODE_TTL" envDefault:"60s"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// LoginURL is the login UI page the authorize endpoint redirects to.
	LoginURL         string `env:"LOGIN_URL" envDefault:"/login"`
	RateLimitEnabled bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// When set and no internal client exists yet, one is created on start.
	InternalClientName        string `env:"INTERNAL_CLIENT_NAME" envDefault:"miniboss"`
	InternalClientRedirectURI string `env:"INTERNAL_CLIENT_REDIRECT_URI"`
}

// LoadConfig reads the given dotenv files (missing ones are skipped) and
// then parses MINIBOSS_* variables. Variables already set in the process
// environment win over dotenv values.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that have no usable default.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return errors.New("config: " + EnvPrefix + "DATABASE_FILE is required for sqlite")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return errors.New("config: " + EnvPrefix + "MYSQL_DSN is required for mysql")
		}
	default:
		return fmt.Errorf("config: unknown database driver %q", c.DatabaseDriver)
	}

	// Expiry is stored with second precision.
	if c.PendingTTL < time.Second || c.CodeTTL < time.Second || c.TokenTTL < time.Second {
		return errors.New("config: TTLs must be at least one second")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	return nil
}
