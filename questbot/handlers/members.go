package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/logger"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

// RoleLister resolves role names for notifications.
type RoleLister interface {
	Roles(ctx context.Context, guildID snowflake.ID) ([]platform.Role, error)
}

// Award is one role-XP grant applied by RoleAwards.
type Award struct {
	RoleID snowflake.ID
	Amount int
	NewXP  int
	Level  int
}

// RoleAwards applies configured role XP when a member gains a role.
type RoleAwards struct {
	settings  SettingsReader
	ledger    XPAdjuster
	roles     RoleLister
	messenger Messenger
	// fallback picks a notification channel when no quest channel is set.
	fallback func(guildID snowflake.ID) (snowflake.ID, bool)
	ttl      time.Duration
}

func NewRoleAwards(settings SettingsReader, ledger XPAdjuster, roles RoleLister, messenger Messenger, fallback func(snowflake.ID) (snowflake.ID, bool)) *RoleAwards {
	return &RoleAwards{
		settings:  settings,
		ledger:    ledger,
		roles:     roles,
		messenger: messenger,
		fallback:  fallback,
		ttl:       config.RoleXPNoticeTTL,
	}
}

// AddedRoles returns the roles in after that are not in before.
func AddedRoles(before, after []snowflake.ID) []snowflake.ID {
	var added []snowflake.ID
	for _, id := range after {
		if !slices.Contains(before, id) {
			added = append(added, id)
		}
	}
	return added
}

// Handle awards XP for every newly gained role that has an assignment. A
// failed adjustment skips that role only.
func (h *RoleAwards) Handle(ctx context.Context, guildID snowflake.ID, user discord.User, added []snowflake.ID) ([]Award, error) {
	if user.Bot || len(added) == 0 {
		return nil, nil
	}

	s, err := h.settings.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(s.RoleXP) == 0 {
		return nil, nil
	}

	var awards []Award
	for _, roleID := range added {
		amount, ok := s.RoleXP[roleID]
		if !ok || amount == 0 {
			continue
		}
		adj, err := h.ledger.Adjust(ctx, user.ID, guildID, amount)
		if err != nil {
			logger.LogEventError("Failed to award role XP", err,
				slog.String("guild_id", guildID.String()),
				slog.String("user_id", user.ID.String()),
				slog.String("role_id", roleID.String()),
			)
			continue
		}
		awards = append(awards, Award{RoleID: roleID, Amount: amount, NewXP: adj.NewXP, Level: adj.NewLevel})
	}

	if len(awards) == 0 {
		return nil, nil
	}

	channelID, ok := h.channel(guildID, s.QuestChannelID)
	if !ok {
		return awards, nil
	}

	names := platform.RoleSet{}
	if roles, err := h.roles.Roles(ctx, guildID); err == nil {
		names = platform.NewRoleSet(roles)
	}
	for _, a := range awards {
		h.notify(channelID, user, names, a)
	}
	return awards, nil
}

func (h *RoleAwards) channel(guildID snowflake.ID, configured *snowflake.ID) (snowflake.ID, bool) {
	if configured != nil {
		return *configured, true
	}
	if h.fallback != nil {
		return h.fallback(guildID)
	}
	return 0, false
}

func (h *RoleAwards) notify(channelID snowflake.ID, user discord.User, names platform.RoleSet, a Award) {
	roleName := a.RoleID.String()
	if role, ok := names[a.RoleID]; ok {
		roleName = role.Name
	}

	msg, err := h.messenger.CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "Role XP Awarded!",
			Description: fmt.Sprintf("%s gained **%s** role!\n%+d XP (Total: %s XP, Level %d)",
				discord.UserMention(user.ID), roleName, a.Amount, utils.FormatNumber(a.NewXP), a.Level),
			Color: config.InfoColor,
		}},
		AllowedMentions: &discord.AllowedMentions{},
	})
	if err != nil {
		slog.Warn("Failed to post role XP notice",
			slog.String("type", "event"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err),
		)
		return
	}
	utils.DeleteAfter(h.messenger, msg.ChannelID, msg.ID, h.ttl)
}

// roleGains returns the roles current holds that old did not. known is false
// when old was never cached, which happens only before the guild's member
// chunk arrives.
func roleGains(old, current discord.Member) (added []snowflake.ID, known bool) {
	if old.User.ID == 0 {
		return nil, false
	}
	return AddedRoles(old.RoleIDs, current.RoleIDs), true
}

// MemberUpdateHandler awards role XP on role gains. The client chunks every
// guild's members so the previous member is cached.
func MemberUpdateHandler(b *questbot.Bot) bot.EventListener {
	handle := sync.OnceValue(func() *RoleAwards {
		return NewRoleAwards(b.Settings, b.Ledger, b.Platform, b.Client.Rest(), systemChannel(b.Client))
	})
	return bot.NewListenerFunc(func(e *events.GuildMemberUpdate) {
		defer recoverEvent("member_update")
		added, known := roleGains(e.OldMember, e.Member)
		if !known {
			slog.Debug("Skipping member update without cached member",
				slog.String("type", "event"),
				slog.String("guild_id", e.GuildID.String()),
				slog.String("user_id", e.Member.User.ID.String()),
			)
			return
		}
		if len(added) == 0 {
			return
		}

		ctx, cancel := eventContext()
		defer cancel()

		if _, err := handle().Handle(ctx, e.GuildID, e.Member.User, added); err != nil {
			logger.LogEventError("Failed to process member role update", err,
				slog.String("guild_id", e.GuildID.String()),
				slog.String("user_id", e.Member.User.ID.String()),
			)
		}
	})
}

func systemChannel(client bot.Client) func(snowflake.ID) (snowflake.ID, bool) {
	return func(guildID snowflake.ID) (snowflake.ID, bool) {
		guild, ok := client.Caches().Guild(guildID)
		if !ok || guild.SystemChannelID == nil {
			return 0, false
		}
		return *guild.SystemChannelID, true
	}
}
