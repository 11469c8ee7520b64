// Package config provides configuration management for querybuilder.
//
// Configuration is loaded from YAML with environment variable overrides and
// validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("querybuilder.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An empty path starts from Default().
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention QUERYBUILDER_SECTION_FIELD:
//
//   - QUERYBUILDER_STORAGE_BACKEND overrides storage.backend
//   - QUERYBUILDER_STORAGE_SQLITE_PATH overrides storage.sqlite.path
//   - QUERYBUILDER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Values from the YAML file
//  2. Default values for fields left empty
//  3. Environment variable overrides
//  4. Validation (all field errors are reported together)
//
// # Example
//
//	storage:
//	  backend: sqlite
//	  format: yaml
//	  sqlite:
//	    path: data/queries.db
//	    driver: sqlite
//	  cache:
//	    enabled: true
//	    ttl: 5m
//	retention:
//	  enabled: true
//	  max_age: 720h
//	  schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: debug
//	    format: json
package config
