// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// backend endpoints, flow-store settings, and server timeouts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LINE channel credentials
	LineChannelToken  string
	LineChannelSecret string

	// WorkerSecret is the shared secret attached to every forwarded
	// payload (header and body) and to proxied frontend requests.
	WorkerSecret string

	// Backend endpoints. Any of these may be empty, in which case the
	// corresponding forward short-circuits to failure.
	PrimaryBackendURL  string // webhook event processing (booking, move-out)
	PayRentBackendURL  string // rent-slip flow
	MoveoutAPIURL      string // frontend move-out API, reached via /api/moveout proxy
	FridgeHookURL      string // fridge rental automation hook
	ParkingHookURL     string // parking automation hook
	AutomationRelayURL string // generic raw-body relay

	// CORS
	AllowedOrigin string

	// Content overrides for the booking how-to images
	HowtoImageURL1 string
	HowtoImageURL2 string

	// Server configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Flow store configuration
	DataDir string
	FlowTTL time.Duration

	// Observability
	BetterStackToken  string
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
}

// Load reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),

		WorkerSecret: getEnv("WORKER_SECRET", ""),

		PrimaryBackendURL:  getEnv("PRIMARY_BACKEND_URL", ""),
		PayRentBackendURL:  getEnv("PAYRENT_BACKEND_URL", ""),
		MoveoutAPIURL:      getEnv("MOVEOUT_API_URL", ""),
		FridgeHookURL:      getEnv("FRIDGE_HOOK_URL", ""),
		ParkingHookURL:     getEnv("PARKING_HOOK_URL", ""),
		AutomationRelayURL: getEnv("AUTOMATION_RELAY_URL", ""),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		HowtoImageURL1: getEnv("HOWTO_IMAGE_URL_1", ""),
		HowtoImageURL2: getEnv("HOWTO_IMAGE_URL_2", ""),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", getDefaultDataDir()),
		FlowTTL: getDurationEnv("FLOW_TTL", FlowTTL),

		BetterStackToken:  getEnv("BETTERSTACK_TOKEN", ""),
		SentryToken:       getEnv("SENTRY_TOKEN", ""),
		SentryHost:        getEnv("SENTRY_HOST", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.FlowTTL <= 0 {
		errs = append(errs, fmt.Errorf("FLOW_TTL must be positive, got %v", c.FlowTTL))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// FlowStorePath returns the full path to the flow store database file
func (c *Config) FlowStorePath() string {
	return filepath.Join(c.DataDir, "flows.db")
}
