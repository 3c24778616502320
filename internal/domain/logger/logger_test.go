package logger

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestQueryLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	NewQueryLogger(newTestLogger(&buf), "exec", "CREATE INDEX x").Log(nil, 3)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "affected_rows=3")
	assert.Contains(t, out, "operation=exec")
}

func TestQueryLogger_Failure(t *testing.T) {
	var buf bytes.Buffer
	NewQueryLogger(newTestLogger(&buf), "exec", "DROP x").Log(errors.New("locked"), -1)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=locked")
}

func TestQueryLogger_NoRowsIsNotFailure(t *testing.T) {
	var buf bytes.Buffer
	NewQueryLogger(newTestLogger(&buf), "SELECT", "SELECT 1").Log(sql.ErrNoRows, -1)

	out := buf.String()
	assert.NotContains(t, out, "level=ERROR")
	assert.NotContains(t, out, "affected_rows")
}
