// Package telemetry groups the observability packages used by querybuilder.
//
//   - logging: slog setup and query/operation scoped loggers
//   - metrics: Prometheus collectors for editor sessions, storage and retention
//   - tracing: OpenTelemetry spans around store and session operations
//   - health: liveness and readiness checks served by the pruning daemon
package telemetry
