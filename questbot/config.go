package questbot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/quests"
	"github.com/ellavondegurechaff/questbot/internal/domain/roles"
	"github.com/ellavondegurechaff/questbot/internal/domain/settings"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
)

var ErrMissingToken = errors.New("DISCORD_BOT_TOKEN is not set")

// LoadConfig reads .env, then the TOML file at path if it exists, then
// environment variables, each layer overriding the previous one.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

func DefaultConfig() Config {
	return Config{
		Log: logger.Config{Format: "console"},
		DB: database.DBConfig{
			Driver: database.DriverSQLite,
			Path:   "questbot.db",
		},
		Reconcile: ReconcileConfig{
			Workers:            2,
			QueueSize:          256,
			CallTimeoutSeconds: 10,
			Concurrency:        4,
		},
		Quests: QuestsConfig{Reward: quests.DefaultReward},
		Settings: SettingsConfig{
			CacheSize: settings.DefaultCacheSize,
		},
	}
}

type Config struct {
	Log       logger.Config     `toml:"log" envPrefix:"LOG_"`
	Bot       BotConfig         `toml:"bot"`
	DB        database.DBConfig `toml:"db" envPrefix:"DB_"`
	Reconcile ReconcileConfig   `toml:"reconcile" envPrefix:"RECONCILE_"`
	Quests    QuestsConfig      `toml:"quests" envPrefix:"QUESTS_"`
	Settings  SettingsConfig    `toml:"settings" envPrefix:"SETTINGS_"`
}

// Validate checks what running the bot requires.
func (c Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	return nil
}

type BotConfig struct {
	DevGuilds    []snowflake.ID `toml:"dev_guilds"`
	Token        string         `toml:"token" env:"DISCORD_BOT_TOKEN"`
	SyncCommands bool           `toml:"sync_commands" env:"SYNC_COMMANDS"`
}

type ReconcileConfig struct {
	Workers            int `toml:"workers" env:"WORKERS"`
	QueueSize          int `toml:"queue_size" env:"QUEUE_SIZE"`
	CallTimeoutSeconds int `toml:"call_timeout_seconds" env:"CALL_TIMEOUT_SECONDS"`
	Concurrency        int `toml:"concurrency" env:"CONCURRENCY"`
}

func (c ReconcileConfig) Roles() roles.Config {
	return roles.Config{
		Workers:     c.Workers,
		QueueSize:   c.QueueSize,
		CallTimeout: time.Duration(c.CallTimeoutSeconds) * time.Second,
		Concurrency: c.Concurrency,
	}
}

type QuestsConfig struct {
	Reward int `toml:"reward" env:"REWARD"`
}

type SettingsConfig struct {
	CacheSize int `toml:"cache_size" env:"CACHE_SIZE"`
}
