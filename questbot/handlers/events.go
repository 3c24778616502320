package handlers

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/quests"
	"github.com/ellavondegurechaff/questbot/internal/domain/settings"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/questbot/config"
)

// Messenger is the slice of the REST client the event handlers post through.
type Messenger interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
}

type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, messageID, memberID snowflake.ID) (quests.Outcome, error)
}

type SettingsReader interface {
	Get(ctx context.Context, guildID snowflake.ID) (settings.Settings, error)
}

type XPAdjuster interface {
	Adjust(ctx context.Context, memberID, guildID snowflake.ID, delta int) (xp.Adjustment, error)
}

func eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.EventTimeout)
}

func recoverEvent(name string) {
	if r := recover(); r != nil {
		slog.Error("Panic in event listener",
			slog.String("type", "event"),
			slog.String("name", name),
			slog.Any("panic", r),
			slog.String("stack_trace", string(debug.Stack())),
		)
	}
}
