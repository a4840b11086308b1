// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"codeberg.org/oliverandrich/taskmanager/internal/config"
)

// setupLogger installs the global slog logger described by the log config.
func setupLogger(cfg config.LogConfig) {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg)))
}

func newLogHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{Level: level})
}
