package logger

import (
	"log/slog"
	"os"
)

// Log falls back to the slog default until Init runs, so packages can log from tests
var Log = slog.Default()

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
