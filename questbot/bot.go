package questbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/internal/domain/quests"
	"github.com/ellavondegurechaff/questbot/internal/domain/roles"
	"github.com/ellavondegurechaff/questbot/internal/domain/settings"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/repositories"
	"github.com/ellavondegurechaff/questbot/internal/gateways/discordapi"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	Platform   platform.Platform
	Ledger     *xp.Ledger
	Aggregator *xp.Aggregator
	Settings   *settings.Store
	Quests     *quests.Tracker
	Reconciler *roles.Reconciler
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds, cache.FlagMembers, cache.FlagRoles)),
		bot.WithMemberChunkingFilter(bot.MemberChunkingFilterAll),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	b.Platform = discordapi.New(client)
	return nil
}

// InitServices builds the XP engine on top of db and p. The ledger's level
// changes feed the reconciler queue.
func (b *Bot) InitServices(db *database.DB, p platform.Platform) {
	b.DB = db
	if p != nil {
		b.Platform = p
	}

	bunDB := db.BunDB()
	b.Ledger = xp.NewLedger(repositories.NewXPRepository(bunDB))
	b.Settings = settings.NewStore(repositories.NewSettingsRepository(bunDB), b.Cfg.Settings.CacheSize)
	b.Quests = quests.NewTracker(repositories.NewQuestRepository(bunDB), b.Ledger, b.Cfg.Quests.Reward)
	b.Aggregator = xp.NewAggregator(b.Ledger, b.Settings, b.Platform)
	b.Reconciler = roles.NewReconciler(b.Platform, b.Ledger, b.Cfg.Reconcile.Roles())
	b.Ledger.Subscribe(b.Reconciler)
}

func (b *Bot) OnReady(e *events.Ready) {
	logger.LogSystem("QuestBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit),
		slog.Int("guilds", len(e.Guilds)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("quests"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		logger.LogError("Failed to set presence", err)
	}

	guildIDs := make([]snowflake.ID, 0, len(e.Guilds))
	for _, g := range e.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}
	go b.warmUp(guildIDs)
}

// warmUp loads settings and creates missing tier roles for every guild.
func (b *Bot) warmUp(guildIDs []snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ReadyTimeout)
	defer cancel()

	if err := b.Settings.LoadAll(ctx, guildIDs); err != nil {
		slog.Warn("Settings warm-up interrupted", slog.String("type", "sys"), slog.Any("error", err))
	}

	for _, guildID := range guildIDs {
		if _, err := b.Reconciler.EnsureTierRoles(ctx, guildID); err != nil {
			slog.Warn("Failed to ensure tier roles",
				slog.String("type", "sys"),
				slog.String("guild_id", guildID.String()),
				slog.Any("error", err),
			)
		}
	}
}
