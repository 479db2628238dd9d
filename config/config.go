// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	BlobDir     string
	Provider    string
	Model       string
	APIKey      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/mentorloop.db"),
		BlobDir:     getEnv("BLOB_DIR", "./data/uploads"),
		Provider:    getEnv("LLM_PROVIDER", "anthropic"),
		Model:       getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
		APIKey:      getEnv("LLM_API_KEY", os.Getenv("ANTHROPIC_API_KEY")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.BlobDir == "" {
		return fmt.Errorf("BLOB_DIR cannot be empty")
	}
	if c.Provider == "" {
		return fmt.Errorf("LLM_PROVIDER cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
