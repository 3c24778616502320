package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/internal/domain/quests"
	"github.com/ellavondegurechaff/questbot/internal/domain/settings"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

var AddQuest = discord.SlashCommandCreate{
	Name:        "addquest",
	Description: "Create a new quest embed",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "title",
			Description: "Quest title",
			Required:    true,
			MaxLength:   utils.Ptr(quests.MaxTitleLength),
		},
		discord.ApplicationCommandOptionString{
			Name:        "content",
			Description: "Quest description",
			Required:    true,
			MaxLength:   utils.Ptr(quests.MaxContentLength),
		},
	},
}

var RemoveQuest = discord.SlashCommandCreate{
	Name:        "removequest",
	Description: "Remove a quest by message ID",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "message_id",
			Description:  "ID of the quest message to remove",
			Required:     true,
			Autocomplete: true,
		},
	},
}

// QuestEmbed is the announcement posted for a new quest.
func QuestEmbed(title, content string, reward int) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("🎯 Quest: "+title).
		SetDescription(content).
		SetColor(config.QuestColor).
		AddField("Reward", fmt.Sprintf("%d XP", reward), true).
		AddField("Complete", "React with "+config.QuestEmoji, true).
		SetFooter("React with "+config.QuestEmoji+" to mark this quest as complete!", "").
		Build()
}

// pingRole picks the configured ping role, falling back to a role named
// "Quests". Configured roles that were deleted are ignored.
func pingRole(s settings.Settings, roles []platform.Role) (platform.Role, bool) {
	set := platform.NewRoleSet(roles)
	if s.QuestPingRoleID != nil {
		if role, ok := set[*s.QuestPingRoleID]; ok {
			return role, true
		}
	}
	return set.ByName(config.DefaultPingRole)
}

func AddQuestHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageMessages); err != nil {
			return utils.EH.HandleError(e, err)
		}

		data := e.SlashCommandInteractionData()
		title := strings.TrimSpace(data.String("title"))
		content := strings.TrimSpace(data.String("content"))
		if err := quests.Validate(title, content); err != nil {
			return utils.EH.HandleError(e, err)
		}

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		s, err := b.Settings.Get(ctx, guildID)
		if err != nil {
			return utils.EH.UpdateError(e, err)
		}
		channelID := e.ChannelID()
		if s.QuestChannelID != nil {
			channelID = *s.QuestChannelID
		}

		rest := e.Client().Rest()
		msg, err := rest.CreateMessage(channelID, discord.MessageCreate{
			Embeds: []discord.Embed{QuestEmbed(title, content, b.Quests.Reward())},
		})
		if err != nil {
			return utils.EH.UpdateError(e, &errs.PermissionError{Permission: "Send Messages", Bot: true})
		}

		if err := b.Quests.Create(ctx, quests.Quest{
			MessageID: msg.ID,
			GuildID:   guildID,
			ChannelID: channelID,
			Title:     title,
			Content:   content,
			CreatedBy: e.User().ID,
		}); err != nil {
			_ = rest.DeleteMessage(channelID, msg.ID)
			return utils.EH.UpdateError(e, err)
		}

		if err := rest.AddReaction(channelID, msg.ID, config.QuestEmoji); err != nil {
			slog.Warn("Failed to add quest reaction",
				slog.String("type", "cmd"),
				slog.String("message_id", msg.ID.String()),
				slog.Any("error", err),
			)
		}

		if roles, err := b.Platform.Roles(ctx, guildID); err == nil {
			if role, ok := pingRole(s, roles); ok {
				ping, err := rest.CreateMessage(channelID, discord.MessageCreate{
					Content:         discord.RoleMention(role.ID) + " New quest available!",
					AllowedMentions: &discord.AllowedMentions{Roles: []snowflake.ID{role.ID}},
				})
				if err == nil {
					utils.DeleteAfter(rest, ping.ChannelID, ping.ID, config.QuestPingTTL)
				}
			}
		}

		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(fmt.Sprintf("✅ Quest created in %s!", discord.ChannelMention(channelID))),
		})
		return err
	}
}

func RemoveQuestHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageMessages); err != nil {
			return utils.EH.HandleError(e, err)
		}

		messageID, err := snowflake.Parse(strings.TrimSpace(e.SlashCommandInteractionData().String("message_id")))
		if err != nil {
			return utils.EH.HandleError(e, errs.Invalid("message_id", "make sure the message ID is correct"))
		}

		ctx, cancel := commandContext()
		defer cancel()

		quest, err := b.Quests.Get(ctx, messageID)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if quest.GuildID != guildID {
			return utils.EH.HandleError(e, &errs.NotFoundError{Entity: "quest", ID: messageID})
		}
		if err := b.Quests.Remove(ctx, messageID); err != nil {
			return utils.EH.HandleError(e, err)
		}

		if err := e.Client().Rest().DeleteMessage(quest.ChannelID, quest.MessageID); err != nil {
			slog.Debug("Quest message already gone",
				slog.String("type", "cmd"),
				slog.String("message_id", messageID.String()),
				slog.Any("error", err),
			)
		}

		return utils.EH.CreateEphemeralSuccess(e, fmt.Sprintf("Quest **%s** removed successfully!", quest.Title))
	}
}

type questSource []quests.Quest

func (s questSource) String(i int) string { return s[i].Title }
func (s questSource) Len() int            { return len(s) }

// questChoices fuzzy-matches query against quest titles, best match first.
func questChoices(active []quests.Quest, query string) []discord.AutocompleteChoice {
	choices := make([]discord.AutocompleteChoice, 0, min(len(active), config.MaxAutocomplete))
	add := func(q quests.Quest) {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  utils.Truncate(q.Title, 100),
			Value: q.MessageID.String(),
		})
	}

	query = strings.TrimSpace(query)
	if query == "" {
		for _, q := range active[:min(len(active), config.MaxAutocomplete)] {
			add(q)
		}
		return choices
	}

	for _, match := range fuzzy.FindFrom(query, questSource(active)) {
		if len(choices) == config.MaxAutocomplete {
			break
		}
		add(active[match.Index])
	}
	return choices
}

func RemoveQuestAutocomplete(b *questbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		guildID := e.GuildID()
		if guildID == nil {
			return e.AutocompleteResult(nil)
		}

		query := ""
		if focused := e.Data.Focused(); focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err == nil {
				query = s
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.AutocompleteTimeout)
		defer cancel()

		active, err := b.Quests.Active(ctx, *guildID)
		if err != nil {
			slog.Error("Failed to list quests for autocomplete",
				slog.String("type", "cmd"),
				slog.String("guild_id", guildID.String()),
				slog.Any("error", err),
			)
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		return e.AutocompleteResult(questChoices(active, query))
	}
}
