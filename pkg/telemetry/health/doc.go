// Package health serves liveness, readiness and version endpoints for the
// long-running querybuilder modes (the scheduled pruner).
//
// Endpoints mounted by Mount:
//
//   - /health: the process is running
//   - /ready: every registered check passed (503 otherwise)
//   - /version: build information
//
// Checks are plain functions; the store check lists stored queries:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("store", s.Ping)
//	mux := http.NewServeMux()
//	health.Mount(mux, checker, health.VersionInfo{Version: Version})
package health
