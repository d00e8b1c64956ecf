// Package handlers serves the monitoring endpoints of a run.
//
// When METRICS_ADDR is set the run starts a small HTTP server with:
//
//	GET /metrics  Prometheus metrics
//	GET /healthz  health summary, 503 once the run has failed
//	GET /livez    liveness probe
//	GET /status   current run state and progress snapshot as JSON
//	GET /version  build information
package handlers
