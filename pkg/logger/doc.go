// Package logger provides a small factory around log/slog plus shared
// attribute helpers so every component logs with consistent keys.
//
// Services in this repository accept a *slog.Logger and default to a discard
// logger; the binary builds one logger at startup (level and format from the
// environment via pkg/config) and injects it everywhere.
//
//	log := logger.NewFromConfig(cfg, logger.WithService("taskhive"))
//	log.Info("user authenticated", logger.UserID(id), logger.Provider("google"))
package logger
