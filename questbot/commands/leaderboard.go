package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "Display the XP leaderboard",
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// renderLeaderboardPage fills embed with one page of standings. Levels shown
// are derived from the total, not the ledger projection.
func renderLeaderboardPage(embed *discord.EmbedBuilder, standings []xp.Standing, page int) {
	pages := pageCount(len(standings), config.LeaderboardPerPage)
	start := page * config.LeaderboardPerPage
	end := min(start+config.LeaderboardPerPage, len(standings))

	embed.
		SetTitle("🏆 XP Leaderboard").
		SetColor(config.GoldColor).
		ClearFields()

	if len(standings) == 0 {
		embed.SetDescription("No users with XP found yet!\nComplete some quests to get on the leaderboard!")
	} else {
		embed.SetDescription(fmt.Sprintf("Top %d Quest Completers", len(standings)))
	}

	for i := start; i < end; i++ {
		s := standings[i]
		embed.AddField(
			fmt.Sprintf("%s Level %d", utils.Medal(i+1), leveling.LevelFor(s.Total)),
			fmt.Sprintf("<@%s>\n%s XP", s.MemberID, utils.FormatNumber(s.Total)),
			true,
		)
	}

	embed.
		AddField("Level System", utils.LevelRequirements(), false).
		SetFooter(fmt.Sprintf("Page %d/%d", page+1, pages), "")
}

type responseUpdater func(discord.MessageUpdate, ...rest.RequestOpt) (*discord.Message, error)

// updateResponder turns a message-create response into an edit of the
// deferred original response.
func updateResponder(update responseUpdater) events.InteractionResponderFunc {
	return func(_ discord.InteractionResponseType, data discord.InteractionResponseData, opts ...rest.RequestOpt) error {
		create, ok := data.(discord.MessageCreate)
		if !ok {
			return fmt.Errorf("unexpected response data %T", data)
		}
		_, err := update(discord.MessageUpdate{
			Embeds:     &create.Embeds,
			Components: &create.Components,
		}, opts...)
		return err
	}
}

func LeaderboardHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		standings, err := b.Aggregator.Ranking(ctx, guildID, 0)
		if err != nil {
			return utils.EH.UpdateError(e, err)
		}

		respond := updateResponder(e.UpdateInteractionResponse)
		pages := pageCount(len(standings), config.LeaderboardPerPage)
		if pages == 1 {
			embed := discord.NewEmbedBuilder()
			renderLeaderboardPage(embed, standings, 0)
			return respond(discord.InteractionResponseTypeCreateMessage, discord.MessageCreate{Embeds: []discord.Embed{embed.Build()}})
		}

		return b.Paginator.Create(respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				renderLeaderboardPage(embed, standings, page)
			},
			Pages:      pages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
