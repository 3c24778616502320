package platform

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

var (
	// ErrMemberNotFound means the member left the guild or cannot be resolved.
	ErrMemberNotFound = errors.New("member not found")
	// ErrRoleNotFound means the role was deleted or never existed.
	ErrRoleNotFound = errors.New("role not found")
	// ErrForbidden means the bot lacks the permission for the call.
	ErrForbidden = errors.New("missing permission")
	// ErrTransient covers network and API failures worth retrying later.
	ErrTransient = errors.New("platform request failed")
)

type Member struct {
	ID      snowflake.ID
	GuildID snowflake.ID
	Name    string
	Bot     bool
	RoleIDs []snowflake.ID
}

// HasRole reports whether the member currently holds roleID.
func (m Member) HasRole(roleID snowflake.ID) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

type Role struct {
	ID   snowflake.ID
	Name string
}

// RoleSet indexes a guild's roles by ID.
type RoleSet map[snowflake.ID]Role

// NewRoleSet builds a RoleSet from a role listing.
func NewRoleSet(roles []Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r.ID] = r
	}
	return set
}

// ByName returns the first role with exactly this name.
func (s RoleSet) ByName(name string) (Role, bool) {
	for _, r := range s {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// Platform is the subset of the chat platform the XP engine talks to.
type Platform interface {
	Member(ctx context.Context, guildID, userID snowflake.ID) (Member, error)
	// CachedMember reads the member without a network call. A miss means the
	// member is not known locally.
	CachedMember(guildID, userID snowflake.ID) (Member, bool)
	Roles(ctx context.Context, guildID snowflake.ID) ([]Role, error)
	AddRole(ctx context.Context, guildID, userID, roleID snowflake.ID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID snowflake.ID, reason string) error
	CreateRole(ctx context.Context, guildID snowflake.ID, name string, color int, reason string) (Role, error)
}
