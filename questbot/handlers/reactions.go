package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/quests"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

// Reaction is the part of a reaction-add event the completion flow reads.
type Reaction struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	User      discord.User
	Emoji     string
}

// QuestReactions turns ✅ reactions on quest messages into completions.
type QuestReactions struct {
	quests    CompletionRecorder
	messenger Messenger
	ttl       time.Duration
}

func NewQuestReactions(recorder CompletionRecorder, messenger Messenger) *QuestReactions {
	return &QuestReactions{
		quests:    recorder,
		messenger: messenger,
		ttl:       config.CompletionNoticeTTL,
	}
}

// Handle records the completion and posts an expiring confirmation when XP
// was awarded.
func (h *QuestReactions) Handle(ctx context.Context, r Reaction) (quests.Outcome, error) {
	if r.User.Bot || r.Emoji != config.QuestEmoji {
		return quests.Outcome{Kind: quests.QuestNotFound}, nil
	}

	outcome, err := h.quests.RecordCompletion(ctx, r.MessageID, r.User.ID)
	if err != nil {
		return outcome, err
	}
	if outcome.Kind != quests.Awarded {
		return outcome, nil
	}

	logger.LogEvent("Quest completed",
		slog.String("guild_id", r.GuildID.String()),
		slog.String("message_id", r.MessageID.String()),
		slog.String("user_id", r.User.ID.String()),
		slog.String("user_name", r.User.Username),
		slog.Int("amount", outcome.Amount),
		slog.Int("new_xp", outcome.Adjustment.NewXP),
	)

	title := ""
	if outcome.Quest != nil {
		title = outcome.Quest.Title
	}
	msg, err := h.messenger.CreateMessage(r.ChannelID, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "Quest Completed!",
			Description: fmt.Sprintf("%s completed: **%s**\n+%d XP (Total: %s XP, Level %d)",
				discord.UserMention(r.User.ID), title, outcome.Amount,
				utils.FormatNumber(outcome.Adjustment.NewXP), outcome.Adjustment.NewLevel),
			Color: config.SuccessColor,
		}},
		AllowedMentions: &discord.AllowedMentions{},
	})
	if err != nil {
		slog.Warn("Failed to post completion notice",
			slog.String("type", "event"),
			slog.String("channel_id", r.ChannelID.String()),
			slog.Any("error", err),
		)
		return outcome, nil
	}
	utils.DeleteAfter(h.messenger, msg.ChannelID, msg.ID, h.ttl)
	return outcome, nil
}

// ReactionHandler listens for reactions on quest messages.
func ReactionHandler(b *questbot.Bot) bot.EventListener {
	handle := sync.OnceValue(func() *QuestReactions {
		return NewQuestReactions(b.Quests, b.Client.Rest())
	})
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		defer recoverEvent("reaction_add")
		h := handle()

		emoji := ""
		if e.Emoji.Name != nil {
			emoji = *e.Emoji.Name
		}

		ctx, cancel := eventContext()
		defer cancel()

		if _, err := h.Handle(ctx, Reaction{
			GuildID:   e.GuildID,
			ChannelID: e.ChannelID,
			MessageID: e.MessageID,
			User:      e.Member.User,
			Emoji:     emoji,
		}); err != nil {
			logger.LogEventError("Failed to record quest completion", err,
				slog.String("message_id", e.MessageID.String()),
				slog.String("user_id", e.UserID.String()),
			)
		}
	})
}
