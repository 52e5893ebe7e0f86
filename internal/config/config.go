// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Apply defaults for optional blocks (server limits, booking, seed, observability).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the BOOKING_ prefix. The prefix is removed, the
	rest is lower-cased, and a double underscore marks nesting:

		BOOKING_SERVER__PORT          -> server.port
		BOOKING_DATABASE__SSL_MODE    -> database.ssl_mode
		BOOKING_AUTH__TOKEN_TTL       -> auth.token_ttl
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "BOOKING_"

// ServiceName tags logs, traces and APM dashboards.
const ServiceName = "booking-now"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Booking       BookingConfig        `koanf:"booking"`
	Seed          SeedConfig           `koanf:"seed"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string          `koanf:"port" validate:"required"`
	ReadTimeout        int             `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int             `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int             `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string        `koanf:"cors_allowed_origins" validate:"required"`
	RateLimit          RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig bounds the public (unauthenticated) endpoints per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"gt=0"`
	ExpiresIn         time.Duration `koanf:"expires_in"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
type AuthConfig struct {
	SecretKey string        `koanf:"secret_key" validate:"required,min=32"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// IntegrationConfig holds third-party provider credentials.
// An empty ResendAPIKey keeps the email jobs in log-only mode.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// BookingConfig tunes booking side jobs.
type BookingConfig struct {
	// ReminderWindow is how far ahead of a booking the reminder goes out.
	ReminderWindow time.Duration `koanf:"reminder_window"`

	// ReminderSchedule is a robfig/cron spec for the reminder sweep.
	ReminderSchedule string `koanf:"reminder_schedule"`

	// DefaultTimezone is used for tenants created without one.
	DefaultTimezone string `koanf:"default_timezone"`
}

// SeedConfig holds the credentials used by the main seed to bootstrap the
// super-admin account.
type SeedConfig struct {
	AdminEmail    string `koanf:"admin_email" validate:"omitempty,email"`
	AdminPassword string `koanf:"admin_password"`
	AdminName     string `koanf:"admin_name"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	applyDefaults(mainConfig)

	// Service name and environment are forced so telemetry sees consistent naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// listKeys are comma-separated in the environment.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// envKey maps BOOKING_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func envKeyValue(s, value string) (string, interface{}) {
	key := envKey(s)
	if listKeys[key] {
		items := strings.Split(value, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		return key, items
	}
	return key, value
}

func applyDefaults(cfg *Config) {
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 5
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 20
	}
	if cfg.Server.RateLimit.ExpiresIn == 0 {
		cfg.Server.RateLimit.ExpiresIn = 3 * time.Minute
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	if cfg.Integration.EmailFrom == "" {
		cfg.Integration.EmailFrom = "Booking Now <onboarding@resend.dev>"
	}

	if cfg.Booking.ReminderWindow == 0 {
		cfg.Booking.ReminderWindow = 24 * time.Hour
	}
	if cfg.Booking.ReminderSchedule == "" {
		cfg.Booking.ReminderSchedule = "@every 15m"
	}
	if cfg.Booking.DefaultTimezone == "" {
		cfg.Booking.DefaultTimezone = "UTC"
	}

	if cfg.Seed.AdminEmail == "" {
		cfg.Seed.AdminEmail = "admin@booking-now.com"
	}
	if cfg.Seed.AdminPassword == "" {
		cfg.Seed.AdminPassword = "admin123"
	}
	if cfg.Seed.AdminName == "" {
		cfg.Seed.AdminName = "Super Admin"
	}

	if cfg.Observability == nil {
		cfg.Observability = DefaultObservabilityConfig()
		return
	}

	// A partially configured observability block keeps what was set and
	// takes the rest from the defaults.
	def := DefaultObservabilityConfig()
	obs := cfg.Observability
	if obs.Logging.Level == "" {
		obs.Logging.Level = def.Logging.Level
	}
	if obs.Logging.Format == "" {
		obs.Logging.Format = def.Logging.Format
	}
	if obs.Logging.SlowQueryThreshold == 0 {
		obs.Logging.SlowQueryThreshold = def.Logging.SlowQueryThreshold
	}
	if obs.HealthChecks.Timeout == 0 {
		obs.HealthChecks.Timeout = def.HealthChecks.Timeout
	}
	if len(obs.HealthChecks.Checks) == 0 {
		obs.HealthChecks.Checks = def.HealthChecks.Checks
	}
}
