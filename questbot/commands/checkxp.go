package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

var CheckXP = discord.SlashCommandCreate{
	Name:        "checkxp",
	Description: "Check your current XP and level progress",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "member",
			Description: "Member to check (defaults to you)",
			Required:    false,
		},
	},
}

// profileEmbed renders a member's total and progress toward the next tier.
func profileEmbed(name string, b xp.Breakdown) *discord.EmbedBuilder {
	p := leveling.ProgressFor(b.Total)

	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("📊 %s's XP Stats", name)).
		SetColor(config.SuccessColor).
		AddField("💰 Current XP", utils.FormatNumber(p.XP)+" XP", true).
		AddField("⭐ Current Level", fmt.Sprintf("Level %d", p.Level), true)

	if p.Maxed() {
		embed.AddField("🏆 Status", "**MAX LEVEL REACHED!**", true)
	} else {
		embed.
			AddField("🎯 XP to Next Level", utils.FormatNumber(p.Needed)+" XP needed", true).
			AddField("📈 Progress to Next Level",
				fmt.Sprintf("`%s` %.1f%%", utils.ProgressBar(p.Percent, config.ProgressBarWidth), p.Percent), false)
	}

	if b.Resolved && b.RoleDerived() > b.Base {
		embed.AddField("🧮 Breakdown", fmt.Sprintf("Quest XP: %s\nLevel roles: %s\nCustom roles: %s\nBadges & streaks: %s",
			utils.FormatNumber(b.Base), utils.FormatNumber(b.LevelRole),
			utils.FormatNumber(b.CustomRole), utils.FormatNumber(b.AutoRole)), false)
	}

	return embed.SetFooter("Complete quests and gain roles to earn XP!", "")
}

func CheckXPHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("member"); ok {
			target = user
		}

		ctx, cancel := commandContext()
		defer cancel()

		breakdown, err := b.Aggregator.TotalXP(ctx, target.ID, guildID)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		embed := profileEmbed(target.EffectiveName(), breakdown).
			SetThumbnail(target.EffectiveAvatarURL())
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed.Build()}})
	}
}
