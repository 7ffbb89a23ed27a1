// Package config provides centralized configuration management for the migration tools.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Source   SourceConfig
	Database DatabaseConfig
	Migrate  MigrateConfig
	Verify   VerifyConfig
	Logging  LoggingConfig
}

// SourceConfig holds settings for the embedded SQLite store.
type SourceConfig struct {
	// Path is the SQLite database file (default: db.sqlite)
	Path string `env:"SQLITE_PATH" envAlt:"SQLITE_DB" default:"db.sqlite"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL is a full PostgreSQL connection string. When set it takes precedence
	// over the individual POSTGRES_* settings.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	Name     string `env:"POSTGRES_DB"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"POSTGRES_HOST" default:"127.0.0.1"`
	Port     int    `env:"POSTGRES_PORT" default:"5432"`

	// SSLMode is passed through as the sslmode connection parameter (default: prefer)
	SSLMode string `env:"POSTGRES_SSLMODE" default:"prefer"`

	// Schema is the namespace holding the destination tables (default: content)
	Schema string `env:"POSTGRES_SCHEMA" default:"content"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// ConnectTimeout bounds the initial connect and ping (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// MigrateConfig holds settings for the SQLite to PostgreSQL transfer.
type MigrateConfig struct {
	// BatchSize is the number of rows extracted and inserted per transaction (default: 100)
	BatchSize int `env:"MIGRATE_BATCH_SIZE" default:"100"`

	// BatchTimeout bounds a single batch transaction (default: 30s)
	BatchTimeout time.Duration `env:"MIGRATE_BATCH_TIMEOUT" default:"30s"`

	// TableTimeout bounds the whole extraction of one table (default: 30m)
	TableTimeout time.Duration `env:"MIGRATE_TABLE_TIMEOUT" default:"30m"`

	// ParallelTables loads tables of equal dependency rank concurrently (default: false)
	ParallelTables bool `env:"MIGRATE_PARALLEL_TABLES" default:"false"`

	// PipelineDepth is how many transformed batches may wait for the loader (default: 2)
	PipelineDepth int `env:"MIGRATE_PIPELINE_DEPTH" default:"2"`

	// SkipInvalidRows logs and skips rows that fail type coercion instead of
	// aborting the batch (default: false)
	SkipInvalidRows bool `env:"MIGRATE_SKIP_INVALID_ROWS" default:"false"`
}

// VerifyConfig holds settings for the consistency check.
type VerifyConfig struct {
	// StopOnFirst stops the value comparison at the first mismatch (default: true)
	StopOnFirst bool `env:"VERIFY_STOP_ON_FIRST" default:"true"`

	// CountsStopOnFirst stops the count comparison at the first mismatch (default: false)
	CountsStopOnFirst bool `env:"VERIFY_COUNTS_STOP_ON_FIRST" default:"false"`

	// TableTimeout bounds the comparison of one table (default: 30m)
	TableTimeout time.Duration `env:"VERIFY_TABLE_TIMEOUT" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ConnString returns the PostgreSQL connection string.
// DATABASE_URL wins; otherwise the URL is assembled from the POSTGRES_* parts.
func (c *DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
