package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int

	// Sync pipeline
	SyncBatchSize      int
	SyncMaxRetries     int
	SyncBaseRetryDelay time.Duration
	SyncBatchDelay     time.Duration

	// External token service (per-user OAuth token retrieval)
	TokenServiceURL string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// SYNC_BATCH_SIZE (default: 100)
	if err := intFromEnv("SYNC_BATCH_SIZE", 100, &cfg.SyncBatchSize); err != nil {
		return nil, err
	}

	// SYNC_MAX_RETRIES (default: 3)
	if err := intFromEnv("SYNC_MAX_RETRIES", 3, &cfg.SyncMaxRetries); err != nil {
		return nil, err
	}

	// SYNC_BASE_RETRY_DELAY (default: 1s)
	if err := durationFromEnv("SYNC_BASE_RETRY_DELAY", time.Second, &cfg.SyncBaseRetryDelay); err != nil {
		return nil, err
	}

	// SYNC_BATCH_DELAY (default: 100ms)
	if err := durationFromEnv("SYNC_BATCH_DELAY", 100*time.Millisecond, &cfg.SyncBatchDelay); err != nil {
		return nil, err
	}

	cfg.TokenServiceURL = os.Getenv("TOKEN_SERVICE_URL")

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

func intFromEnv(name string, def int, out *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		*out = def
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s must be a valid integer: %w", name, err)
	}
	*out = v
	return nil
}

func durationFromEnv(name string, def time.Duration, out *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		*out = def
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration: %w", name, err)
	}
	*out = v
	return nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SyncBatchSize < 1 {
		return fmt.Errorf("SyncBatchSize must be at least 1")
	}
	if c.SyncMaxRetries < 1 {
		return fmt.Errorf("SyncMaxRetries must be at least 1")
	}
	if c.SyncBaseRetryDelay <= 0 {
		return fmt.Errorf("SyncBaseRetryDelay must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	if c.TokenServiceURL == "" {
		return fmt.Errorf("TOKEN_SERVICE_URL is required in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Int("sync_batch_size", c.SyncBatchSize),
		slog.Int("sync_max_retries", c.SyncMaxRetries),
		slog.Duration("sync_base_retry_delay", c.SyncBaseRetryDelay),
		slog.Duration("sync_batch_delay", c.SyncBatchDelay),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("token_service_set", c.TokenServiceURL != ""),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
