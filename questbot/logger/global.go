package logger

import (
	"log/slog"
)

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "sys")}, attrs...)...)
}

// LogEvent logs a handled gateway event
func LogEvent(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "event")}, attrs...)...)
}

// LogEventError logs a gateway event that could not be handled
func LogEventError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "event"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
