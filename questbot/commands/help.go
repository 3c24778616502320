package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
)

var Ping = discord.SlashCommandCreate{
	Name:        "questbot",
	Description: "Ping the bot to check if it's online",
}

var Help = discord.SlashCommandCreate{
	Name:        "commands",
	Description: "Display all available bot commands",
}

func PingHandler(e *handler.CommandEvent) error {
	return e.CreateMessage(discord.MessageCreate{Content: "online"})
}

const helpText = `**Quest Management:**
` + "`/addquest`" + ` - Create new quest embed
` + "`/removequest`" + ` - Delete quest by message ID
` + "`/questping`" + ` - Set quest ping role
` + "`/questchannel`" + ` - Set quest channel

**XP Management (Staff Only):**
` + "`/addxp`" + ` - Add XP to user
` + "`/removexp`" + ` - Remove XP from user
` + "`/assignrolexp`" + ` - Assign XP value to role

**Level Roles (Admin Only):**
` + "`/createlevelroles`" + ` - Create all Level 1-10 roles
` + "`/assignlevelroles`" + ` - Assign level roles to all users

**General:**
` + "`/leaderboard`" + ` - Display XP rankings
` + "`/checkxp [member]`" + ` - Check your or someone's XP
` + "`/questbot`" + ` - Ping bot to check if online
` + "`/commands`" + ` - Show this command list`

func HelpHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		embed := discord.NewEmbedBuilder().
			SetTitle("🤖 QuestBot Commands").
			SetDescription("All available commands for the Discord Quest Bot").
			SetColor(config.InfoColor).
			AddField("⚡ Slash Commands", helpText, false).
			AddField("🏆 Level System", fmt.Sprintf(
				"Earn XP by completing quests (%d XP each) and gaining roles!\nLevel roles are automatically assigned based on your XP.",
				b.Quests.Reward()), false).
			SetFooter(fmt.Sprintf("QuestBot %s", b.Version), "").
			Build()
		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}
