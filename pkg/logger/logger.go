package logger

import (
	"log/slog"
	"os"
)

// Setup initializes the global logger.
// Output goes to stdout using a TextHandler, which is human-readable on the
// serial console. This can be changed to JSONHandler or other transports in
// the future.
func Setup() {
	level := slog.LevelInfo
	if os.Getenv("CAM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// Fatal logs an error message and then exits the application.
// slog doesn't have a Fatal method by default.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
