package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend       = "file"
	DefaultStorageFormat        = "yaml"
	DefaultFileDirectory        = "stored_queries"
	DefaultFileDebounceInterval = 100 * time.Millisecond
	DefaultSQLitePath           = "data/queries.db"
	DefaultSQLiteDriver         = "sqlite"
	DefaultSQLiteJournalMode    = "WAL"
	DefaultSQLiteBusyTimeout    = 5 * time.Second
	DefaultBoltPath             = "data/queries.bolt"
	DefaultBoltBucket           = "queries"
	DefaultBoltOpenTimeout      = time.Second
	DefaultCacheTTL             = 5 * time.Minute
	DefaultCacheCleanupInterval = 10 * time.Minute

	// Retention defaults
	DefaultRetentionMaxAge   = 30 * 24 * time.Hour
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMetricsNamespace = "querybuilder"
	DefaultTracingService   = "querybuilder"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
	DefaultTracingTimeout   = 10 * time.Second
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Format == "" {
		cfg.Storage.Format = DefaultStorageFormat
	}
	if cfg.Storage.File.Directory == "" {
		cfg.Storage.File.Directory = DefaultFileDirectory
	}
	if cfg.Storage.File.DebounceInterval == 0 {
		cfg.Storage.File.DebounceInterval = DefaultFileDebounceInterval
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.JournalMode == "" {
		cfg.Storage.SQLite.JournalMode = DefaultSQLiteJournalMode
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Storage.Bolt.Path == "" {
		cfg.Storage.Bolt.Path = DefaultBoltPath
	}
	if cfg.Storage.Bolt.Bucket == "" {
		cfg.Storage.Bolt.Bucket = DefaultBoltBucket
	}
	if cfg.Storage.Bolt.OpenTimeout == 0 {
		cfg.Storage.Bolt.OpenTimeout = DefaultBoltOpenTimeout
	}
	if cfg.Storage.Cache.TTL == 0 {
		cfg.Storage.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Storage.Cache.CleanupInterval == 0 {
		cfg.Storage.Cache.CleanupInterval = DefaultCacheCleanupInterval
	}

	// Retention defaults
	if cfg.Retention.MaxAge == 0 {
		cfg.Retention.MaxAge = DefaultRetentionMaxAge
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
