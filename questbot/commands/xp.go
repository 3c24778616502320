package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

const maxManualAdjustment = 1_000_000

func xpAmountOptions(verb string) []discord.ApplicationCommandOption {
	return []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: fmt.Sprintf("Member to %s XP", verb),
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: fmt.Sprintf("Amount of XP to %s", verb),
			Required:    true,
			MinValue:    utils.Ptr(1),
			MaxValue:    utils.Ptr(maxManualAdjustment),
		},
	}
}

var AddXP = discord.SlashCommandCreate{
	Name:        "addxp",
	Description: "Add XP to a member",
	Options:     xpAmountOptions("add"),
}

var RemoveXP = discord.SlashCommandCreate{
	Name:        "removexp",
	Description: "Remove XP from a member",
	Options:     xpAmountOptions("remove"),
}

func AddXPHandler(b *questbot.Bot) handler.CommandHandler {
	return adjustXPHandler(b, 1)
}

func RemoveXPHandler(b *questbot.Bot) handler.CommandHandler {
	return adjustXPHandler(b, -1)
}

// adjustXPHandler applies sign*amount to the chosen member through the ledger.
func adjustXPHandler(b *questbot.Bot, sign int) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := requireStaff(ctx, e, b.Platform); err != nil {
			return utils.EH.HandleError(e, err)
		}

		data := e.SlashCommandInteractionData()
		target := data.User("member")
		amount := data.Int("amount")
		if amount <= 0 || amount > maxManualAdjustment {
			return utils.EH.HandleError(e, errs.Invalid("amount", "must be between 1 and %d", maxManualAdjustment))
		}
		if target.Bot {
			return utils.EH.HandleError(e, errs.Invalid("member", "bots cannot hold XP"))
		}

		adj, err := b.Ledger.Adjust(ctx, target.ID, guildID, sign*amount)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds:          []discord.Embed{adjustmentEmbed(target.ID.String(), amount, sign, adj)},
			AllowedMentions: &discord.AllowedMentions{},
		})
	}
}

func adjustmentEmbed(memberID string, amount, sign int, adj xp.Adjustment) discord.Embed {
	embed := discord.Embed{
		Title:       "XP Added",
		Description: fmt.Sprintf("Added %s XP to <@%s>", utils.FormatNumber(amount), memberID),
		Color:       config.SuccessColor,
	}
	if sign < 0 {
		embed.Title = "XP Removed"
		embed.Description = fmt.Sprintf("Removed %s XP from <@%s>", utils.FormatNumber(amount), memberID)
		embed.Color = config.ErrorColor
	}
	embed.Description += fmt.Sprintf("\nNew Total: %s XP (Level %d)", utils.FormatNumber(adj.NewXP), adj.NewLevel)
	if adj.LeveledUp {
		embed.Description += fmt.Sprintf("\nLevel %d → %d", adj.OldLevel, adj.NewLevel)
	}
	return embed
}
