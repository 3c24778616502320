// Package logger records database statements through slog.
package logger

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

type QueryLogger struct {
	Logger    *slog.Logger
	Operation string
	Query     string
	StartTime time.Time
}

func NewQueryLogger(logger *slog.Logger, operation, query string) *QueryLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryLogger{
		Logger:    logger,
		Operation: operation,
		Query:     query,
		StartTime: time.Now(),
	}
}

// Log reports the statement's outcome. Empty result sets are not failures.
func (l *QueryLogger) Log(err error, rowsAffected int64) {
	attrs := []any{
		slog.String("type", "db"),
		slog.String("operation", l.Operation),
		slog.String("query", l.Query),
		slog.Duration("took", time.Since(l.StartTime)),
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		l.Logger.Error("Query failed", append(attrs, slog.Any("error", err))...)
		return
	}

	if rowsAffected >= 0 {
		attrs = append(attrs, slog.Int64("affected_rows", rowsAffected))
	}
	l.Logger.Debug("Query executed", attrs...)
}
