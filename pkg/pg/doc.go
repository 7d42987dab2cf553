// Package pg bootstraps the PostgreSQL layer on top of the pgx/v5 driver:
// pool construction from environment-driven Config with retry, a healthcheck
// closure for readiness probes, and error helpers shared by all storage code
// (not-found, unique-violation and foreign-key detection).
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//	pool, err := pg.Connect(ctx, cfg)
//
// Schema management is handled outside the service; this package only talks
// to an existing database.
package pg
