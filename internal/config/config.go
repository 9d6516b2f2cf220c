// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir        string        // Base directory for all databases (always absolute)
	Port           int           // HTTP server port
	LogLevel       string        // zerolog level (debug, info, warn, error)
	DevMode        bool          // enables pretty logging
	SeedDemoData   bool          // load the demo portfolio on startup
	FinnhubAPIKey  string        // market data API key (empty enables test mode implicitly)
	FinnhubBaseURL string        // override for tests; defaults to the public API
	PriceTestMode  bool          // serve deterministic mock prices, no network calls
	PriceCacheTTL  time.Duration // how long a fetched quote stays fresh
}

// Load reads configuration from environment variables, consulting a .env
// file if one exists. The data directory is created if missing and always
// resolved to an absolute path.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
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
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		SeedDemoData:   getEnvAsBool("SEED_DEMO_DATA", false),
		FinnhubAPIKey:  getEnv("FINNHUB_API_KEY", ""),
		FinnhubBaseURL: getEnv("FINNHUB_BASE_URL", ""),
		PriceTestMode:  getEnvAsBool("FINNHUB_TEST_MODE", false),
		PriceCacheTTL:  getEnvAsDuration("PRICE_CACHE_TTL", 60*time.Second),
	}

	// Without an API key the price client can only serve mock prices, so
	// switch to test mode instead of issuing doomed requests.
	if cfg.FinnhubAPIKey == "" {
		cfg.PriceTestMode = true
	}

	return cfg, nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
