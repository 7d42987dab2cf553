// Package config provides a type-safe, generic way to load application
// configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a small API that:
//
//   - Loads the default `.env` file once per process (missing file is fine).
//   - Parses the environment into any Go struct using field tags.
//   - Exposes a panicking helper (`MustLoad`) for configuration the
//     application cannot start without.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields with
// `env` tags:
//
//	type PGConfig struct {
//	    ConnectionString string `env:"DATABASE_URL,required"`
//	    MaxOpenConns     int32  `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//	}
//
// Then populate it during startup:
//
//	var cfg PGConfig
//	config.MustLoad(&cfg)
//
// Each component declares its own Config struct next to its constructor and
// receives the parsed value via injection; nothing in this repository reads
// ambient configuration at call time.
package config
