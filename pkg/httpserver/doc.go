// Package httpserver wraps net/http.Server with environment-driven
// configuration, graceful shutdown on context cancellation or SIGINT/SIGTERM,
// and a health endpoint handler for liveness and readiness probes.
package httpserver
