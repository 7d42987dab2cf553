// Package redis bootstraps the Redis client used for short-lived server-side
// state (OAuth2 CSRF state tokens): connection with retry from an
// environment-driven Config, plus a healthcheck closure for readiness probes.
package redis
