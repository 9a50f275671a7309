package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// EnvPrefix namespaces every environment key
const EnvPrefix = "AUCTION"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	Redis  RedisConfig
	Sweep  SweepConfig
	Wallet WalletConfig
}

type AppConfig struct {
	Port     string `envconfig:"AUCTION_PORT" default:"8080"`
	LogLevel string `envconfig:"AUCTION_LOG_LEVEL" default:"info"`
	SeedDemo bool   `envconfig:"AUCTION_SEED_DEMO" default:"false"`
}

// Addr returns the listen address for the HTTP server
func (a AppConfig) Addr() string {
	if strings.HasPrefix(a.Port, ":") {
		return a.Port
	}
	return ":" + a.Port
}

type DBConfig struct {
	Driver          string        `envconfig:"AUCTION_DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"AUCTION_DB_DSN" default:"file:auction.db?cache=shared"`
	MaxOpenConns    int           `envconfig:"AUCTION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUCTION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUCTION_DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUCTION_AUTO_MIGRATE" default:"true"`
}

type JWTConfig struct {
	Secret string        `envconfig:"AUCTION_JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"AUCTION_JWT_ISSUER" default:"auction-marketplace"`
	TTL    time.Duration `envconfig:"AUCTION_JWT_TTL" default:"24h"`
}

type RedisConfig struct {
	URL string `envconfig:"AUCTION_REDIS_URL"`
}

type SweepConfig struct {
	Interval time.Duration `envconfig:"AUCTION_SWEEP_INTERVAL" default:"0s"`
	LockTTL  time.Duration `envconfig:"AUCTION_SWEEP_LOCK_TTL" default:"1m"`
}

type WalletConfig struct {
	CommissionRate string `envconfig:"AUCTION_COMMISSION_RATE" default:"0.05"`
}

// Commission parses the configured commission rate
func (w WalletConfig) Commission() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(w.CommissionRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing commission rate: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("commission rate %s out of range [0,1)", rate)
	}
	return rate, nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case DriverSQLite, DriverPostgres:
		c.DB.Driver = strings.ToLower(c.DB.Driver)
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("database DSN is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Sweep.Interval < 0 {
		return errors.New("sweep interval must not be negative")
	}
	if _, err := c.Wallet.Commission(); err != nil {
		return err
	}
	return nil
}
