// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr  string
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DatabaseURL string

	// Google Drive
	DriveRootFolderID string
	DriveKeyFile      string // path to a service-account JSON key
	DriveTimeout      time.Duration

	// Caching
	StructureRefreshInterval time.Duration
	ContentCacheMaxBytes     int64
	FoodCacheTTL             time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:  envOr("LISTEN_ADDR", ":5000"),
		MetricsAddr: envOr("METRICS_ADDR", ":9090"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "json"),
		DatabaseURL: envOr("DATABASE_URL", ""),

		DriveRootFolderID: envOr("DRIVE_ROOT_FOLDER_ID", ""),
		DriveKeyFile:      envOr("DRIVE_KEY_FILE", ""),
		DriveTimeout:      envDuration("DRIVE_TIMEOUT", 30*time.Second),

		StructureRefreshInterval: envDuration("STRUCTURE_REFRESH_INTERVAL", 15*time.Minute),
		ContentCacheMaxBytes:     envInt64("CONTENT_CACHE_MAX_BYTES", 10*1024*1024), // 10 MiB default
		FoodCacheTTL:             envDuration("FOOD_CACHE_TTL", 5*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DriveRootFolderID == "" {
		return nil, fmt.Errorf("DRIVE_ROOT_FOLDER_ID is required")
	}
	if cfg.DriveKeyFile == "" {
		return nil, fmt.Errorf("DRIVE_KEY_FILE is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
