package leveling

import (
	"fmt"
	"strconv"
	"strings"
)

// TierRolePrefix names the roles mirroring the level table ("Level 1" .. "Level 10").
const TierRolePrefix = "Level "

// AutoRoleXP is granted per detected badge or streak role.
const AutoRoleXP = 5

// RoleCategory is the semantic kind inferred from a role name.
type RoleCategory int

const (
	CategoryNone RoleCategory = iota
	CategoryBadge
	CategoryStreak
)

func (c RoleCategory) String() string {
	switch c {
	case CategoryBadge:
		return "badge"
	case CategoryStreak:
		return "streak"
	default:
		return "none"
	}
}

// TierRoleName returns the role name for a tier.
func TierRoleName(level int) string {
	return fmt.Sprintf("%s%d", TierRolePrefix, level)
}

// TierFromRoleName parses "Level N" into N. Only exact-case prefixes with a
// level inside the table match.
func TierFromRoleName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, TierRolePrefix)
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil || !Valid(level) {
		return 0, false
	}
	return level, true
}

// ClassifyRole detects auto-XP categories by case-insensitive substring.
// A name containing both words is a badge.
func ClassifyRole(name string) RoleCategory {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "badge"):
		return CategoryBadge
	case strings.Contains(lower, "streak"):
		return CategoryStreak
	default:
		return CategoryNone
	}
}

// TierRoleColor interpolates from blue (level 1) to gold (level 10).
func TierRoleColor(level int) int {
	const from, to = 0x0099ff, 0xffd700
	level = Clamp(level)
	return from + (to-from)*(level-1)/(MaxLevel-1)
}
