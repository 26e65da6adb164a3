// Package logger provides the structured logger shared by the application.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds a slog.Logger: text at debug level in development, JSON at info
// level otherwise.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
