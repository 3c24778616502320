package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/handlers"
)

var Commands = []discord.ApplicationCommandCreate{
	Ping,
	Help,
	AddQuest,
	RemoveQuest,
	QuestPing,
	QuestChannel,
	AddXP,
	RemoveXP,
	AssignRoleXP,
	Leaderboard,
	CheckXP,
	CreateLevelRoles,
	AssignLevelRoles,
}

// Register routes every slash command to its handler.
func Register(h *handler.Mux, b *questbot.Bot) {
	// General
	h.Command("/questbot", handlers.WrapWithLogging("questbot", PingHandler))
	h.Command("/commands", handlers.WrapWithLogging("commands", HelpHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", LeaderboardHandler(b)))
	h.Command("/checkxp", handlers.WrapWithLogging("checkxp", CheckXPHandler(b)))

	// Quests
	h.Command("/addquest", handlers.WrapWithLogging("addquest", AddQuestHandler(b)))
	h.Command("/removequest", handlers.WrapWithLogging("removequest", RemoveQuestHandler(b)))
	h.Autocomplete("/removequest", handlers.WrapAutocomplete("removequest", RemoveQuestAutocomplete(b)))
	h.Command("/questping", handlers.WrapWithLogging("questping", QuestPingHandler(b)))
	h.Command("/questchannel", handlers.WrapWithLogging("questchannel", QuestChannelHandler(b)))

	// XP
	h.Command("/addxp", handlers.WrapWithLogging("addxp", AddXPHandler(b)))
	h.Command("/removexp", handlers.WrapWithLogging("removexp", RemoveXPHandler(b)))
	h.Command("/assignrolexp", handlers.WrapWithLogging("assignrolexp", AssignRoleXPHandler(b)))

	// Level roles
	h.Command("/createlevelroles", handlers.WrapWithTimeout("createlevelroles", config.LongCommandTimeout, CreateLevelRolesHandler(b)))
	h.Command("/assignlevelroles", handlers.WrapWithTimeout("assignlevelroles", config.LongCommandTimeout, AssignLevelRolesHandler(b)))
}
