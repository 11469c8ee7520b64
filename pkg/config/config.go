package config

import "time"

// Config is the root configuration for querybuilder.
type Config struct {
	// Storage selects and configures the named-query storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Retention controls pruning of stale named queries.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig contains named-query storage configuration.
type StorageConfig struct {
	// Backend is the storage implementation.
	// Options: "memory", "file", "sqlite", "bolt"
	// Default: "file"
	Backend string `yaml:"backend"`

	// Format is the document encoding used for stored trees.
	// Options: "yaml", "json", "xml"
	// Default: "yaml"
	Format string `yaml:"format"`

	// File configures the file directory backend.
	File FileStorageConfig `yaml:"file"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteStorageConfig `yaml:"sqlite"`

	// Bolt configures the BoltDB backend.
	Bolt BoltStorageConfig `yaml:"bolt"`

	// Cache configures the read-through cache in front of the backend.
	Cache CacheConfig `yaml:"cache"`
}

// FileStorageConfig configures the file directory backend.
type FileStorageConfig struct {
	// Directory holds one document per named query.
	// Default: "stored_queries"
	Directory string `yaml:"directory"`

	// Watch invalidates cached entries when files change on disk.
	// Only meaningful when the cache is enabled.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval groups bursts of file events.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SQLiteStorageConfig configures the SQLite backend.
type SQLiteStorageConfig struct {
	// Path is the database file path.
	// Default: "data/queries.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// JournalMode is applied with PRAGMA journal_mode.
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// BoltStorageConfig configures the BoltDB backend.
type BoltStorageConfig struct {
	// Path is the database file path.
	// Default: "data/queries.bolt"
	Path string `yaml:"path"`

	// Bucket holds the stored documents.
	// Default: "queries"
	Bucket string `yaml:"bucket"`

	// OpenTimeout is how long to wait for the file lock.
	// Default: 1s
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// CacheConfig configures the read-through document cache.
type CacheConfig struct {
	// Enabled turns the cache on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// TTL is how long a loaded document stays cached.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// CleanupInterval is how often expired entries are evicted.
	// Default: 10m
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RetentionConfig controls pruning of named queries that have not been saved
// for a while.
type RetentionConfig struct {
	// Enabled turns scheduled pruning on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// MaxAge is how long a query may go unsaved before it is pruned.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is a standard cron expression.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "querybuilder"
	Namespace string `yaml:"namespace"`

	// TextfilePath, when set, receives the metrics in Prometheus text format
	// after each command (node-exporter textfile collector layout).
	TextfilePath string `yaml:"textfile_path"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled turns span export on. When false a noop tracer is used.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "querybuilder"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
