package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// maxPostgresParams is the bind parameter limit of a single PostgreSQL statement.
const maxPostgresParams = 65535

// maxColumnsPerRow is the widest destination row (film_work).
const maxColumnsPerRow = 8

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Source validation
	if strings.TrimSpace(c.Source.Path) == "" {
		errs = append(errs, "SQLITE_PATH is required")
	}

	// Database validation
	if c.Database.URL == "" {
		if c.Database.Name == "" {
			errs = append(errs, "POSTGRES_DB is required when DATABASE_URL is not set")
		}
		if c.Database.User == "" {
			errs = append(errs, "POSTGRES_USER is required when DATABASE_URL is not set")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("POSTGRES_PORT (%d) must be 1-65535", c.Database.Port))
		}
	}
	if c.Database.Schema == "" {
		errs = append(errs, "POSTGRES_SCHEMA must not be empty")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must be positive")
	}

	// Migration validation
	if c.Migrate.BatchSize <= 0 {
		errs = append(errs, "MIGRATE_BATCH_SIZE must be positive")
	} else if c.Migrate.BatchSize*maxColumnsPerRow > maxPostgresParams {
		errs = append(errs, fmt.Sprintf("MIGRATE_BATCH_SIZE (%d) exceeds the %d bind parameters allowed per INSERT",
			c.Migrate.BatchSize, maxPostgresParams))
	}
	if c.Migrate.BatchTimeout <= 0 {
		errs = append(errs, "MIGRATE_BATCH_TIMEOUT must be positive")
	}
	if c.Migrate.TableTimeout <= 0 {
		errs = append(errs, "MIGRATE_TABLE_TIMEOUT must be positive")
	}
	if c.Migrate.PipelineDepth < 0 {
		errs = append(errs, "MIGRATE_PIPELINE_DEPTH must be non-negative")
	}

	// Verification validation
	if c.Verify.TableTimeout <= 0 {
		errs = append(errs, "VERIFY_TABLE_TIMEOUT must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Source: {Path: %q}, ", c.Source.Path))
	if c.Database.URL != "" {
		b.WriteString("Database: {URL: [MASKED], ")
	} else {
		b.WriteString(fmt.Sprintf("Database: {Host: %q, Port: %d, Name: %q, User: %q, Password: [MASKED], ",
			c.Database.Host, c.Database.Port, c.Database.Name, c.Database.User))
	}
	b.WriteString(fmt.Sprintf("Schema: %q, MaxConns: %d}, ", c.Database.Schema, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Migrate: {BatchSize: %d, ParallelTables: %v, SkipInvalidRows: %v}, ",
		c.Migrate.BatchSize, c.Migrate.ParallelTables, c.Migrate.SkipInvalidRows))
	b.WriteString(fmt.Sprintf("Verify: {StopOnFirst: %v, CountsStopOnFirst: %v}, ",
		c.Verify.StopOnFirst, c.Verify.CountsStopOnFirst))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
