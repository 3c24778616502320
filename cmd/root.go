package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/commands"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/handlers"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	configPath   string
	syncCommands bool
)

var rootCmd = &cobra.Command{
	Use:           "questbot",
	Short:         "Discord quest and XP leveling bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
	rootCmd.Flags().BoolVar(&syncCommands, "sync-commands", false, "Whether to sync commands to discord")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.LogError("QuestBot exited with error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and installs the configured logger.
func loadConfig() (*questbot.Config, error) {
	cfg, err := questbot.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return cfg, nil
}

// openDatabase connects to the configured store and creates missing tables.
func openDatabase(ctx context.Context, cfg database.DBConfig) (*database.DB, error) {
	dbStart := time.Now()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err = db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	if err = db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	total, idle := db.Stats()
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("driver", db.Driver()),
		slog.Int("conns", total),
		slog.Int("idle_conns", idle),
		slog.Duration("took", time.Since(dbStart)),
	)
	return db, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	db, err := openDatabase(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.LogSystem("Starting QuestBot",
		slog.String("version", version),
		slog.String("commit", commit),
	)

	b := questbot.New(*cfg, version, commit)

	h := handler.New()
	commands.Register(h, b)

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		handlers.ReactionHandler(b),
		handlers.MemberUpdateHandler(b),
	); err != nil {
		return fmt.Errorf("failed to setup bot: %w", err)
	}
	b.InitServices(db, nil)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	b.Reconciler.Start(workerCtx)

	defer func() {
		b.Reconciler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if syncCommands || cfg.Bot.SyncCommands {
		logger.LogSystem("Syncing commands",
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
			)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
	return nil
}
