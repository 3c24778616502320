package xp

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
)

// RoleXPSource returns a guild's custom role to XP assignments.
type RoleXPSource interface {
	RoleXP(ctx context.Context, guildID snowflake.ID) (map[snowflake.ID]int, error)
}

// Breakdown is how a member's total was computed.
type Breakdown struct {
	Base       int
	LevelRole  int
	CustomRole int
	AutoRole   int
	Total      int
	// Resolved is false when the member's roles could not be read and the
	// total is the ledger value alone.
	Resolved bool
}

// RoleDerived is the XP implied by the member's roles.
func (b Breakdown) RoleDerived() int {
	return b.LevelRole + b.CustomRole + b.AutoRole
}

// Standing is one leaderboard row.
type Standing struct {
	Record
	Breakdown
}

// Aggregator merges ledger XP with role-derived XP. It never writes.
type Aggregator struct {
	ledger   *Ledger
	settings RoleXPSource
	platform platform.Platform
}

func NewAggregator(ledger *Ledger, settings RoleXPSource, p platform.Platform) *Aggregator {
	return &Aggregator{
		ledger:   ledger,
		settings: settings,
		platform: p,
	}
}

// TotalXP returns max(base, levelRole+customRole+autoRole) for the member.
func (a *Aggregator) TotalXP(ctx context.Context, memberID, guildID snowflake.ID) (Breakdown, error) {
	record, err := a.ledger.Get(ctx, memberID, guildID)
	if err != nil {
		return Breakdown{}, err
	}

	roles, roleXP, ok := a.guildContext(ctx, guildID)
	if !ok {
		return baseOnly(record.XP), nil
	}
	return a.total(ctx, record, roles, roleXP), nil
}

// Ranking orders the guild's members by total XP, highest first. Members with
// equal totals keep ledger order. A non-positive limit returns everyone.
// Members are read from the local cache only; a miss counts as a departed
// member and ranks on ledger XP.
func (a *Aggregator) Ranking(ctx context.Context, guildID snowflake.ID, limit int) ([]Standing, error) {
	records, err := a.ledger.All(ctx, guildID)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, len(records))
	roles, roleXP, ok := a.guildContext(ctx, guildID)
	for i, r := range records {
		standings[i] = Standing{Record: r, Breakdown: baseOnly(r.XP)}
		if !ok {
			continue
		}
		if member, found := a.platform.CachedMember(guildID, r.MemberID); found {
			standings[i].Breakdown = Compute(r.XP, member.RoleIDs, roles, roleXP)
		}
	}

	slices.SortStableFunc(standings, func(x, y Standing) int {
		return cmp.Compare(y.Total, x.Total)
	})
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, nil
}

func (a *Aggregator) guildContext(ctx context.Context, guildID snowflake.ID) (platform.RoleSet, map[snowflake.ID]int, bool) {
	roles, err := a.platform.Roles(ctx, guildID)
	if err != nil {
		slog.Warn("Failed to list guild roles, using ledger XP only",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
		return nil, nil, false
	}

	roleXP, err := a.settings.RoleXP(ctx, guildID)
	if err != nil {
		slog.Warn("Failed to load role XP assignments",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
		roleXP = nil
	}
	return platform.NewRoleSet(roles), roleXP, true
}

func (a *Aggregator) total(ctx context.Context, record Record, roles platform.RoleSet, roleXP map[snowflake.ID]int) Breakdown {
	member, err := a.platform.Member(ctx, record.GuildID, record.MemberID)
	if err != nil {
		return baseOnly(record.XP)
	}
	return Compute(record.XP, member.RoleIDs, roles, roleXP)
}

func baseOnly(base int) Breakdown {
	return Breakdown{Base: base, Total: base}
}

// Compute derives a Breakdown from the member's held roles. Roles missing
// from the guild role set contribute only through roleXP.
func Compute(base int, held []snowflake.ID, roles platform.RoleSet, roleXP map[snowflake.ID]int) Breakdown {
	b := Breakdown{Base: base, Resolved: true}

	for _, id := range held {
		b.CustomRole += roleXP[id]

		role, ok := roles[id]
		if !ok {
			continue
		}
		if level, ok := leveling.TierFromRoleName(role.Name); ok {
			b.LevelRole = max(b.LevelRole, leveling.ThresholdFor(level))
		}
		if leveling.ClassifyRole(role.Name) != leveling.CategoryNone {
			b.AutoRole += leveling.AutoRoleXP
		}
	}

	b.Total = max(b.Base, b.RoleDerived())
	return b
}
