package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // LEDGER_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	JWTExpiryDuration  time.Duration
	CORSAllowedOrigins []string

	// PrivilegedRateLimit uses the ulule/limiter format, e.g. "5-M".
	PrivilegedRateLimit string

	AMQPURL      string
	AMQPExchange string

	JobConcurrency    int
	JobMaxAttempts    int
	JobInitialBackoff time.Duration
	JobMaxBackoff     time.Duration

	// Location defines calendar days and months for archives and snapshots.
	Location        *time.Location
	EventBufferSize int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "12h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("PRIVILEGED_RATE_LIMIT", "5-M")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "ledger.events")
	v.SetDefault("JOB_CONCURRENCY", 4)
	v.SetDefault("JOB_MAX_ATTEMPTS", 3)
	v.SetDefault("JOB_INITIAL_BACKOFF", "200ms")
	v.SetDefault("JOB_MAX_BACKOFF", "5s")
	v.SetDefault("LEDGER_TIMEZONE", "Africa/Tunis")
	v.SetDefault("EVENT_BUFFER_SIZE", 64)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		PrivilegedRateLimit: v.GetString("PRIVILEGED_RATE_LIMIT"),
		AMQPURL:             v.GetString("AMQP_URL"),
		AMQPExchange:        v.GetString("AMQP_EXCHANGE"),
		JobConcurrency:      v.GetInt("JOB_CONCURRENCY"),
		JobMaxAttempts:      v.GetInt("JOB_MAX_ATTEMPTS"),
		EventBufferSize:     v.GetInt("EVENT_BUFFER_SIZE"),
	}

	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set. Using the in-memory store.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.JWTExpiryDuration, err = parseDuration(v, "JWT_EXPIRY_DURATION"); err != nil {
		return nil, err
	}
	if cfg.JobInitialBackoff, err = parseDuration(v, "JOB_INITIAL_BACKOFF"); err != nil {
		return nil, err
	}
	if cfg.JobMaxBackoff, err = parseDuration(v, "JOB_MAX_BACKOFF"); err != nil {
		return nil, err
	}

	if cfg.JobConcurrency < 1 {
		return nil, fmt.Errorf("JOB_CONCURRENCY must be at least 1, got %d", cfg.JobConcurrency)
	}
	if cfg.JobMaxAttempts < 1 {
		return nil, fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1, got %d", cfg.JobMaxAttempts)
	}
	if cfg.EventBufferSize < 1 {
		cfg.EventBufferSize = 64
	}

	tz := v.GetString("LEDGER_TIMEZONE")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE %q: %w", tz, err)
	}
	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}
