package roles

import (
	"cmp"
	"slices"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
)

// TierRoles maps a level to the guild role representing it. When several
// roles share a tier name the one with the lowest ID wins.
type TierRoles map[int]platform.Role

func tierRolesOf(roles []platform.Role) TierRoles {
	sorted := slices.Clone(roles)
	slices.SortFunc(sorted, func(a, b platform.Role) int { return cmp.Compare(a.ID, b.ID) })

	tiers := TierRoles{}
	for _, r := range sorted {
		level, ok := leveling.TierFromRoleName(r.Name)
		if !ok {
			continue
		}
		if _, taken := tiers[level]; !taken {
			tiers[level] = r
		}
	}
	return tiers
}

// Complete reports whether every level has a role.
func (t TierRoles) Complete() bool {
	for level := leveling.MinLevel; level <= leveling.MaxLevel; level++ {
		if _, ok := t[level]; !ok {
			return false
		}
	}
	return true
}

// plan is the role changes that make member hold exactly the target tier.
type plan struct {
	remove []platform.Role
	grant  *platform.Role
}

// planFor strips every held tier role except the target's and grants the
// target if missing. Any role whose name parses as a tier counts, including
// duplicates of the target name.
func planFor(member platform.Member, roles []platform.Role, tiers TierRoles, target int) plan {
	var p plan
	want, hasTarget := tiers[target]
	names := platform.NewRoleSet(roles)

	for _, id := range member.RoleIDs {
		r, ok := names[id]
		if !ok {
			continue
		}
		if _, isTier := leveling.TierFromRoleName(r.Name); !isTier {
			continue
		}
		if hasTarget && r.ID == want.ID {
			continue
		}
		p.remove = append(p.remove, r)
	}

	if hasTarget && !member.HasRole(want.ID) {
		p.grant = &want
	}
	return p
}
