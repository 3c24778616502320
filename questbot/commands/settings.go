package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

var QuestPing = discord.SlashCommandCreate{
	Name:        "questping",
	Description: "Set the role to ping for new quests",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "Role to ping for quests",
			Required:    true,
		},
	},
}

var QuestChannel = discord.SlashCommandCreate{
	Name:        "questchannel",
	Description: "Set the channel for quest embeds",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionChannel{
			Name:         "channel",
			Description:  "Channel for quest embeds",
			Required:     true,
			ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText, discord.ChannelTypeGuildNews},
		},
	},
}

var AssignRoleXP = discord.SlashCommandCreate{
	Name:        "assignrolexp",
	Description: "Assign XP value to a role",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionRole{
			Name:        "role",
			Description: "Role to assign XP to",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "xp_amount",
			Description: "XP amount for this role (0 removes the assignment)",
			Required:    true,
		},
	},
}

func QuestPingHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageRoles); err != nil {
			return utils.EH.HandleError(e, err)
		}

		role := e.SlashCommandInteractionData().Role("role")

		ctx, cancel := commandContext()
		defer cancel()

		if err := b.Settings.SetQuestPingRole(ctx, guildID, role.ID); err != nil {
			return utils.EH.HandleError(e, err)
		}
		return utils.EH.CreateEphemeralSuccess(e, "Quest ping role set to: "+discord.RoleMention(role.ID))
	}
}

func QuestChannelHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageChannels); err != nil {
			return utils.EH.HandleError(e, err)
		}

		channel := e.SlashCommandInteractionData().Channel("channel")

		ctx, cancel := commandContext()
		defer cancel()

		if err := b.Settings.SetQuestChannel(ctx, guildID, channel.ID); err != nil {
			return utils.EH.HandleError(e, err)
		}
		return utils.EH.CreateEphemeralSuccess(e, "Quest channel set to: "+discord.ChannelMention(channel.ID))
	}
}

func AssignRoleXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageRoles); err != nil {
			return utils.EH.HandleError(e, err)
		}

		data := e.SlashCommandInteractionData()
		role := data.Role("role")
		amount := data.Int("xp_amount")
		if role.Managed || role.ID == guildID {
			return utils.EH.HandleError(e, errs.Invalid("role", "%s cannot be assigned XP", role.Name))
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := b.Settings.SetRoleXP(ctx, guildID, role.ID, amount); err != nil {
			return utils.EH.HandleError(e, err)
		}

		description := fmt.Sprintf("Role **%s** now awards %s XP when obtained", role.Name, utils.FormatNumber(amount))
		if amount == 0 {
			description = fmt.Sprintf("Role **%s** no longer awards XP", role.Name)
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Role XP Assignment",
				Description: description,
				Color:       config.InfoColor,
			}},
		})
	}
}
