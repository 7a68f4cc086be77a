// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the snapshot and database (always absolute)
	MFAPIBaseURL    string // NAV provider endpoint; empty selects the production default
	CacheMaxAge     int    // Snapshot max age in hours; 0 disables caching entirely
	FetchWorkers    int    // Concurrent NAV fetches during bulk operations
	MaxFunds        int    // Cap on funds fetched from the scheme list
	TopN            int    // Funds persisted per report date
	RefreshSchedule string // Cron expression for the refresh job
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory, resolve to absolute, and ensure it exists.
	dataDir := getEnv("FUNDWATCH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		MFAPIBaseURL:    getEnv("MFAPI_BASE_URL", ""),
		CacheMaxAge:     getEnvAsInt("CACHE_MAX_AGE_HOURS", 24),
		FetchWorkers:    getEnvAsInt("FETCH_WORKERS", 15),
		MaxFunds:        getEnvAsInt("MAX_FUNDS", 600),
		TopN:            getEnvAsInt("TOP_N", 200),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@daily"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration values are usable
func (c *Config) Validate() error {
	if c.CacheMaxAge < 0 {
		return fmt.Errorf("CACHE_MAX_AGE_HOURS must not be negative, got %d", c.CacheMaxAge)
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive, got %d", c.FetchWorkers)
	}
	if c.MaxFunds <= 0 {
		return fmt.Errorf("MAX_FUNDS must be positive, got %d", c.MaxFunds)
	}
	return nil
}

// SnapshotPath returns the NAV snapshot file location.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "nav_snapshot.msgpack")
}

// DatabasePath returns the returns database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "returns.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
