// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// FailurePolicy selects how the run reacts to per-row data errors
// (unparseable dates, unsupported phone prefixes). Configuration errors
// always abort regardless of policy.
type FailurePolicy string

const (
	// FailAbort stops the run on the first data error. Default.
	FailAbort FailurePolicy = "abort"
	// FailSkipRow drops the offending row with a warning and continues,
	// up to MaxSkippedRows.
	FailSkipRow FailurePolicy = "skip-row"
)

// Config represents the application configuration.
type Config struct {
	// Row processing
	WorkerCount    int
	BatchSize      int
	FailurePolicy  FailurePolicy
	MaxSkippedRows int

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		WorkerCount:    getEnvAsInt("ANON_WORKERS", defaultWorkerCount()),
		BatchSize:      getEnvAsInt("ANON_BATCH_SIZE", 1000),
		FailurePolicy:  FailurePolicy(getEnv("ANON_FAILURE_POLICY", string(FailAbort))),
		MaxSkippedRows: getEnvAsInt("ANON_MAX_SKIPPED_ROWS", 100),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		return errors.New("worker count must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.FailurePolicy != FailAbort && c.FailurePolicy != FailSkipRow {
		return fmt.Errorf("failure policy must be %q or %q", FailAbort, FailSkipRow)
	}
	if c.MaxSkippedRows < 0 {
		return errors.New("max skipped rows cannot be negative")
	}
	return nil
}

// defaultWorkerCount sizes the worker pool from available CPUs, capped so a
// single run does not monopolise the host.
func defaultWorkerCount() int {
	workers := runtime.NumCPU() * 3 / 4
	if workers < 2 {
		workers = 2
	} else if workers > 12 {
		workers = 12
	}
	return workers
}

// PostgresConfig holds PostgreSQL connection parameters for schema
// introspection.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// LoadPostgresConfig loads PostgreSQL configuration from environment
// variables. Only commands that introspect a live database call this.
func LoadPostgresConfig() (*PostgresConfig, error) {
	host := os.Getenv("PG_HOST")
	if host == "" {
		return nil, errors.New("PG_HOST environment variable is required")
	}

	user := os.Getenv("PG_USER")
	if user == "" {
		return nil, errors.New("PG_USER environment variable is required")
	}

	database := os.Getenv("PG_DATABASE")
	if database == "" {
		return nil, errors.New("PG_DATABASE environment variable is required")
	}

	return &PostgresConfig{
		Host:           host,
		Port:           getEnvAsInt("PG_PORT", 5432),
		User:           user,
		Password:       os.Getenv("PG_PASSWORD"),
		Database:       database,
		SSLMode:        getEnv("PG_SSLMODE", "prefer"),
		ConnectTimeout: time.Duration(getEnvAsInt("PG_CONNECT_TIMEOUT_MS", 5000)) * time.Millisecond,
		QueryTimeout:   time.Duration(getEnvAsInt("PG_QUERY_TIMEOUT_MS", 60000)) * time.Millisecond,
	}, nil
}

// ConnectionString builds a lib/pq keyword/value DSN.
func (c *PostgresConfig) ConnectionString() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
