package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/internal/domain/roles"
	"github.com/ellavondegurechaff/questbot/questbot"
	"github.com/ellavondegurechaff/questbot/questbot/config"
	"github.com/ellavondegurechaff/questbot/questbot/utils"
)

var CreateLevelRoles = discord.SlashCommandCreate{
	Name:        "createlevelroles",
	Description: fmt.Sprintf("Manually create all level roles (Level %d-%d)", leveling.MinLevel, leveling.MaxLevel),
}

var AssignLevelRoles = discord.SlashCommandCreate{
	Name:        "assignlevelroles",
	Description: "Assign level roles to all users based on their current XP",
}

// platformError turns a permission failure from the platform into the bot's
// own PermissionError.
func platformError(err error) error {
	if errors.Is(err, platform.ErrForbidden) {
		return &errs.PermissionError{Permission: "Manage Roles", Bot: true}
	}
	return err
}

func CreateLevelRolesHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageRoles); err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.ReadyTimeout)
		defer cancel()

		ensured, err := b.Reconciler.EnsureTierRoles(ctx, guildID)
		if err != nil && !ensured.Tiers.Complete() {
			return utils.EH.UpdateError(e, platformError(err))
		}

		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(createdSummary(ensured)),
		})
		return err
	}
}

func createdSummary(ensured roles.Ensured) string {
	if len(ensured.Created) == 0 {
		return fmt.Sprintf("✅ Level roles verified for Levels %d-%d!", leveling.MinLevel, leveling.MaxLevel)
	}
	return fmt.Sprintf("✅ Level roles created/verified for Levels %d-%d! (%d new)", leveling.MinLevel, leveling.MaxLevel, len(ensured.Created))
}

func AssignLevelRolesHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		guildID, err := guildOf(e)
		if err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := requirePermission(e, discord.PermissionManageRoles); err != nil {
			return utils.EH.HandleError(e, err)
		}
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.ReadyTimeout)
		defer cancel()

		report, err := b.Reconciler.ReconcileAll(ctx, guildID)
		if err != nil {
			return utils.EH.UpdateError(e, platformError(err))
		}

		slog.Info("Level roles reconciled",
			slog.String("type", "cmd"),
			slog.String("guild_id", guildID.String()),
			slog.Int("members", report.Members),
			slog.Int("granted", report.Granted),
			slog.Int("removed", report.Removed),
			slog.Int("failed", report.Failed),
		)

		_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(reportSummary(report)),
		})
		return err
	}
}

func reportSummary(r roles.Report) string {
	msg := fmt.Sprintf("✅ Checked level roles for %d users: %d granted, %d removed.", r.Members, r.Granted, r.Removed)
	if !r.Changed() && r.Failed == 0 {
		msg = fmt.Sprintf("✅ All %d users already hold their level roles.", r.Members)
	}
	if r.Missing > 0 {
		msg += fmt.Sprintf("\n%d users are no longer in the server.", r.Missing)
	}
	if r.Failed > 0 {
		msg += fmt.Sprintf("\n⚠️ %d role changes failed; check my role position and permissions.", r.Failed)
	}
	return msg
}
