// Package discordapi implements platform.Platform over disgo's REST client.
package discordapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
)

// Platform reads members from the gateway cache when it can and falls back
// to REST.
type Platform struct {
	client bot.Client
}

func New(client bot.Client) *Platform {
	return &Platform{client: client}
}

func (p *Platform) Member(ctx context.Context, guildID, userID snowflake.ID) (platform.Member, error) {
	if m, ok := p.client.Caches().Member(guildID, userID); ok {
		return toMember(guildID, m), nil
	}

	m, err := p.client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil {
		return platform.Member{}, translate("get member", err)
	}
	return toMember(guildID, *m), nil
}

func (p *Platform) CachedMember(guildID, userID snowflake.ID) (platform.Member, bool) {
	m, ok := p.client.Caches().Member(guildID, userID)
	if !ok {
		return platform.Member{}, false
	}
	return toMember(guildID, m), true
}

func (p *Platform) Roles(ctx context.Context, guildID snowflake.ID) ([]platform.Role, error) {
	roles, err := p.client.Rest().GetRoles(guildID, rest.WithCtx(ctx))
	if err != nil {
		return nil, translate("get roles", err)
	}
	out := make([]platform.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, platform.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID snowflake.ID, reason string) error {
	err := p.client.Rest().AddMemberRole(guildID, userID, roleID, rest.WithCtx(ctx), rest.WithReason(reason))
	return translate("add role", err)
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID snowflake.ID, reason string) error {
	err := p.client.Rest().RemoveMemberRole(guildID, userID, roleID, rest.WithCtx(ctx), rest.WithReason(reason))
	return translate("remove role", err)
}

func (p *Platform) CreateRole(ctx context.Context, guildID snowflake.ID, name string, color int, reason string) (platform.Role, error) {
	role, err := p.client.Rest().CreateRole(guildID, discord.RoleCreate{
		Name:  name,
		Color: color,
	}, rest.WithCtx(ctx), rest.WithReason(reason))
	if err != nil {
		return platform.Role{}, translate("create role", err)
	}
	return platform.Role{ID: role.ID, Name: role.Name}, nil
}

func toMember(guildID snowflake.ID, m discord.Member) platform.Member {
	return platform.Member{
		ID:      m.User.ID,
		GuildID: guildID,
		Name:    m.EffectiveName(),
		Bot:     m.User.Bot,
		RoleIDs: m.RoleIDs,
	}
}

// JSON error codes returned with 404 responses.
const (
	codeUnknownMember = 10007
	codeUnknownRole   = 10011
	codeUnknownUser   = 10013
)

// translate maps REST failures onto the platform error set.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var restErr *rest.Error
	if errors.As(err, &restErr) {
		switch {
		case restErr.Code == codeUnknownMember || restErr.Code == codeUnknownUser:
			return fmt.Errorf("%s: %w: %w", op, platform.ErrMemberNotFound, err)
		case restErr.Code == codeUnknownRole:
			return fmt.Errorf("%s: %w: %w", op, platform.ErrRoleNotFound, err)
		case restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", op, platform.ErrForbidden, err)
		case restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, platform.ErrMemberNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, platform.ErrTransient, err)
}
