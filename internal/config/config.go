package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Backend selectors.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	Backend  string
	Local    LocalConfig
	Database DatabaseConfig
	Log      LogConfig
}

// LocalConfig holds settings for the embedded storage backend
type LocalConfig struct {
	// DataDir is where the snapshot slot lives.
	DataDir string
	// DebounceWindow is the quiet period between a mutation and the
	// snapshot it triggers.
	DebounceWindow time.Duration
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Backend: getEnv("STORAGE_BACKEND", BackendLocal),
		Local: LocalConfig{
			DataDir:        getEnv("LOCAL_DATA_DIR", "./data"),
			DebounceWindow: getDurationEnv("SNAPSHOT_DEBOUNCE", 500*time.Millisecond),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "travelog"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// IsLocal returns true when the embedded backend is selected
func (c *Config) IsLocal() bool {
	return c.Backend == BackendLocal
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend != BackendLocal && c.Backend != BackendRemote {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be '%s' or '%s', got '%s'",
			BackendLocal, BackendRemote, c.Backend))
	}

	switch c.Backend {
	case BackendLocal:
		if c.Local.DataDir == "" {
			errs = append(errs, errors.New("LOCAL_DATA_DIR is required"))
		}
		if c.Local.DebounceWindow <= 0 {
			errs = append(errs, errors.New("SNAPSHOT_DEBOUNCE must be positive"))
		}
	case BackendRemote:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be 'debug', 'info', 'warn' or 'error', got '%s'", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
