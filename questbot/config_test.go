package questbot

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[log]
level = "debug"
format = "tint"

[bot]
token = "from-file"
dev_guilds = [123]

[db]
driver = "postgres"
host = "localhost"
port = 5432

[reconcile]
workers = 4
call_timeout_seconds = 5

[quests]
reward = 75
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_BOT_TOKEN"))
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Equal(t, "from-file", cfg.Bot.Token)
	assert.Equal(t, []snowflake.ID{123}, cfg.Bot.DevGuilds)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 75, cfg.Quests.Reward)

	rc := cfg.Reconcile.Roles()
	assert.Equal(t, 4, rc.Workers)
	assert.Equal(t, 256, rc.QueueSize)
	assert.Equal(t, 5*time.Second, rc.CallTimeout)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_BOT_TOKEN", "from-env")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("QUESTS_REWARD", "10")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Token)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 10, cfg.Quests.Reward)
}

func TestLoadConfig_DotEnvWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCORD_BOT_TOKEN=dotenv\n"), 0o600))
	t.Setenv("DISCORD_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_BOT_TOKEN"))

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Bot.Token)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRequiresToken(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}
