package config

import (
	"fmt"
	"slices"
	"strings"

	"collectionbuilder/querybuilder/pkg/query/codec"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var (
	validBackends     = []string{"memory", "file", "sqlite", "bolt"}
	validDrivers      = []string{"sqlite", "sqlite3"}
	validJournalModes = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"json", "text"}
	validSamplers     = []string{"always", "never", "ratio"}
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateStorage validates storage configuration. Backend-specific sections
// are only checked for the selected backend.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	if !slices.Contains(validBackends, cfg.Backend) {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validBackends, ", "), cfg.Backend),
		})
	}
	if _, err := codec.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, FieldError{Field: "storage.format", Message: err.Error()})
	}

	switch cfg.Backend {
	case "file":
		if cfg.File.Directory == "" {
			errs = append(errs, FieldError{Field: "storage.file.directory", Message: "directory is required"})
		}
		if cfg.File.DebounceInterval < 0 {
			errs = append(errs, FieldError{Field: "storage.file.debounce_interval", Message: "must not be negative"})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "path is required"})
		}
		if !slices.Contains(validDrivers, cfg.SQLite.Driver) {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.driver",
				Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validDrivers, ", "), cfg.SQLite.Driver),
			})
		}
		if !slices.Contains(validJournalModes, strings.ToUpper(cfg.SQLite.JournalMode)) {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.journal_mode",
				Message: fmt.Sprintf("unsupported journal mode %q", cfg.SQLite.JournalMode),
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{Field: "storage.sqlite.busy_timeout", Message: "must not be negative"})
		}
	case "bolt":
		if cfg.Bolt.Path == "" {
			errs = append(errs, FieldError{Field: "storage.bolt.path", Message: "path is required"})
		}
		if cfg.Bolt.Bucket == "" {
			errs = append(errs, FieldError{Field: "storage.bolt.bucket", Message: "bucket is required"})
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		errs = append(errs, FieldError{Field: "storage.cache.ttl", Message: "must be positive when the cache is enabled"})
	}

	return errs
}

// validateRetention validates retention configuration.
func validateRetention(cfg *RetentionConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	if cfg.MaxAge <= 0 {
		errs = append(errs, FieldError{Field: "retention.max_age", Message: "must be positive"})
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "retention.schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
		})
	}
	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validLogLevels, ", "), cfg.Logging.Level),
		})
	}
	if !slices.Contains(validLogFormats, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validLogFormats, ", "), cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "namespace is required"})
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required"})
		}
		if !slices.Contains(validSamplers, cfg.Tracing.Sampler) {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validSamplers, ", "), cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
		}
	}

	return errs
}
