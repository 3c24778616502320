package database

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/questbot/internal/domain/logger"
)

// QueryHook logs every bun query with its duration.
type QueryHook struct {
	logger *slog.Logger
}

func NewQueryHook(l *slog.Logger) *QueryHook {
	return &QueryHook{logger: l}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	ql := &logger.QueryLogger{
		Logger:    h.logger,
		Operation: event.Operation(),
		Query:     event.Query,
		StartTime: event.StartTime,
	}

	affected := int64(-1)
	if event.Err == nil && event.Result != nil {
		if n, err := event.Result.RowsAffected(); err == nil {
			affected = n
		}
	}
	ql.Log(event.Err, affected)
}
