package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// OneSignal
	OneSignalAppID   string
	OneSignalRESTKey string
	HTTPTimeout      time.Duration

	// Delivery log
	DatabasePath string
	HistoryLimit int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		OneSignalAppID:   getEnv("ONESIGNAL_APP_ID", ""),
		OneSignalRESTKey: getEnv("ONESIGNAL_REST_KEY", ""),
		DatabasePath:     getEnv("DATABASE_PATH", "data/pushsignal.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	limit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}
	cfg.HistoryLimit = limit

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForSending checks configuration needed to deliver notifications.
func (c *Config) ValidateForSending() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OneSignalAppID == "" {
		return fmt.Errorf("ONESIGNAL_APP_ID is required for sending")
	}
	if c.OneSignalRESTKey == "" {
		return fmt.Errorf("ONESIGNAL_REST_KEY is required for sending")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
