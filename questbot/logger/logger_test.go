package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, false))

	log.Info("Command completed",
		slog.String("type", "cmd"),
		slog.String("name", "addxp"),
		slog.String("user_name", "alice"),
		slog.String("status", "success"),
		slog.Duration("took", 12*time.Millisecond),
		slog.String("guild_id", "10"),
	)

	line := buf.String()
	assert.Contains(t, line, "[QuestBot]")
	assert.Contains(t, line, "[INFO] [CMD] Command completed [addxp by alice] [Status: success] (took 12ms) guild_id=10")
}

func TestCustomHandler_ErrorsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, false)).
		With(slog.String("type", "worker")).
		WithGroup("reconcile")

	log.Error("Role sync failed", slog.Any("error", errors.New("boom")), slog.Int("level", 3))

	line := buf.String()
	assert.Contains(t, line, "[ERROR] [WRK] Role sync failed: boom")
	assert.Contains(t, line, "reconcile.level=3")
}

func TestCustomHandler_FiltersLevelAndNoise(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, false))

	log.Debug("hidden")
	log.Info("sending heartbeat")
	assert.Empty(t, buf.String())
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "console", "tint", "json", "text"} {
		var buf bytes.Buffer
		log, err := New(Config{Level: slog.LevelInfo, Format: format, NoColor: true}, &buf)
		require.NoError(t, err, format)
		log.Info("hello")
		assert.Contains(t, buf.String(), "hello", format)
	}

	_, err := New(Config{Format: "xml"}, nil)
	assert.Error(t, err)
}

func TestGlobalHelpers(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(NewHandler(&buf, slog.LevelInfo, false)))

	LogSystem("Database ready")
	LogEvent("Quest completed", slog.Int("amount", 50))
	LogEventError("Failed to award role XP", errors.New("locked"))
	LogError("QuestBot exited with error", errors.New("gateway closed"))

	out := buf.String()
	assert.Contains(t, out, "[INFO] [SYS] Database ready")
	assert.Contains(t, out, "[INFO] [EVT] Quest completed amount=50")
	assert.Contains(t, out, "[ERROR] [EVT] Failed to award role XP: locked")
	assert.Contains(t, out, "[ERROR] [ERR] QuestBot exited with error: gateway closed")
}
