package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration for the browser dashboard
	CORS CORSConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Vehicle position feed configuration
	VehicleFeed VehicleFeedConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
	MigrationsPath  string
}

// JWTConfig holds JWT configuration. When Enabled is false the API is open,
// which suits a dashboard behind an authenticating proxy.
type JWTConfig struct {
	Enabled        bool
	Secret         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
}

// VehicleFeedConfig holds the remote vehicle feed settings. An empty URL
// disables polling; vehicles are then served from stored records.
type VehicleFeedConfig struct {
	URL            string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from the environment, reading a .env file first
// if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
		slog.Debug("no .env file found, using process environment")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv builds a configuration from environment variables without
// validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            env("SERVER_PORT", ":8080", parseString),
			ReadTimeout:     env("SERVER_READ_TIMEOUT", 15*time.Second, time.ParseDuration),
			WriteTimeout:    env("SERVER_WRITE_TIMEOUT", 15*time.Second, time.ParseDuration),
			IdleTimeout:     env("SERVER_IDLE_TIMEOUT", 60*time.Second, time.ParseDuration),
			ShutdownTimeout: env("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second, time.ParseDuration),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        env("DB_MAX_CONNS", 25, strconv.Atoi),
			MinConns:        env("DB_MIN_CONNS", 2, strconv.Atoi),
			ConnMaxLifetime: env("DB_CONN_MAX_LIFETIME", 5*time.Minute, time.ParseDuration),
			ConnMaxIdleTime: env("DB_CONN_MAX_IDLE_TIME", 5*time.Minute, time.ParseDuration),
			AutoMigrate:     env("DB_AUTO_MIGRATE", false, strconv.ParseBool),
			MigrationsPath:  env("DB_MIGRATIONS_PATH", "migrations", parseString),
		},
		JWT: JWTConfig{
			Enabled:        env("AUTH_ENABLED", false, strconv.ParseBool),
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: env("JWT_ACCESS_TOKEN_TTL", 12*time.Hour, time.ParseDuration),
		},
		RateLimit: RateLimitConfig{
			Enabled:           env("RATE_LIMIT_ENABLED", true, strconv.ParseBool),
			RequestsPerSecond: env("RATE_LIMIT_RPS", float64(10), parseFloat),
			BurstSize:         env("RATE_LIMIT_BURST", 20, strconv.Atoi),
		},
		CORS: CORSConfig{
			AllowedOrigins: env("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}, parseList),
			MaxAge:         env("CORS_MAX_AGE", 300, strconv.Atoi),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  env("WS_ALLOWED_ORIGINS", []string{}, parseList),
			ReadBufferSize:  env("WS_READ_BUFFER_SIZE", 1024, strconv.Atoi),
			WriteBufferSize: env("WS_WRITE_BUFFER_SIZE", 4096, strconv.Atoi),
		},
		VehicleFeed: VehicleFeedConfig{
			URL:            os.Getenv("VEHICLE_FEED_URL"),
			PollInterval:   env("VEHICLE_POLL_INTERVAL", 5*time.Second, time.ParseDuration),
			RequestTimeout: env("VEHICLE_FEED_TIMEOUT", 4*time.Second, time.ParseDuration),
		},
		Logging: LoggingConfig{
			Level:  env("LOG_LEVEL", "info", parseString),
			Format: env("LOG_FORMAT", "json", parseString),
		},
		App: AppConfig{
			Name:        env("APP_NAME", "fleet-dashboard", parseString),
			Version:     env("APP_VERSION", "dev", parseString),
			Environment: env("APP_ENV", "development", parseString),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.JWT.Enabled && c.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required when AUTH_ENABLED is set")
	}

	if c.VehicleFeed.URL != "" {
		if u, err := url.Parse(c.VehicleFeed.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, "VEHICLE_FEED_URL must be an absolute URL")
		}
	}

	// Security validations
	if c.App.Environment == "production" {
		if c.JWT.Enabled && len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DB_MIN_CONNS cannot be greater than DB_MAX_CONNS")
	}

	if c.VehicleFeed.PollInterval <= 0 {
		errs = append(errs, "VEHICLE_POLL_INTERVAL must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// env reads key with parse, falling back to def when the variable is unset
// or does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseList splits a comma-separated list, dropping blanks. An all-blank
// list is an error so the default applies.
func parseList(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("empty list")
	}
	return out, nil
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, DB: %s, Auth: %v, JWT: [REDACTED], RateLimit: %v, VehicleFeed: %s, Environment: %s}",
		c.Server.Port,
		redactURL(c.Database.URL),
		c.JWT.Enabled,
		c.RateLimit.Enabled,
		redactURL(c.VehicleFeed.URL),
		c.App.Environment,
	)
}

// redactURL redacts sensitive parts of a database URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[REDACTED]"
	}
	if u.User != nil {
		u.User = url.User("REDACTED")
	}
	u.RawQuery = ""
	return u.String()
}
