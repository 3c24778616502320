package commands

import (
	"context"
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/questbot/config"
)

var permissionNames = map[discord.Permissions]string{
	discord.PermissionManageMessages: "Manage Messages",
	discord.PermissionManageRoles:    "Manage Roles",
	discord.PermissionManageChannels: "Manage Channels",
}

// requirePermission fails with a PermissionError unless the issuer holds perm
// in the current guild.
func requirePermission(e *handler.CommandEvent, perm discord.Permissions) error {
	member := e.Member()
	if member == nil || !member.Permissions.Has(perm) {
		return &errs.PermissionError{Permission: permissionNames[perm]}
	}
	return nil
}

// isStaff reports whether any of roleIDs names a staff or admin role.
func isStaff(roleIDs []snowflake.ID, roles []platform.Role) bool {
	set := platform.NewRoleSet(roles)
	for _, id := range roleIDs {
		if role, ok := set[id]; ok && slices.Contains(config.StaffRoleNames, role.Name) {
			return true
		}
	}
	return false
}

// requireStaff allows members with a staff role name. Members with Manage
// Roles pass as well.
func requireStaff(ctx context.Context, e *handler.CommandEvent, p platform.Platform) error {
	member := e.Member()
	guildID := e.GuildID()
	if member == nil || guildID == nil {
		return &errs.PermissionError{Permission: "@staff role"}
	}
	if member.Permissions.Has(discord.PermissionManageRoles) {
		return nil
	}

	roles, err := p.Roles(ctx, *guildID)
	if err != nil {
		return err
	}
	if !isStaff(member.RoleIDs, roles) {
		return &errs.PermissionError{Permission: "@staff role"}
	}
	return nil
}

// guildOf returns the guild the command was issued in.
func guildOf(e *handler.CommandEvent) (snowflake.ID, error) {
	if id := e.GuildID(); id != nil {
		return *id, nil
	}
	return 0, errs.Invalid("", "this command can only be used in a server")
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.CommandTimeout)
}
