package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`

	GuildID           string         `bun:"guild_id,pk"`
	QuestPingRoleID   *string        `bun:"quest_ping_role_id"`
	QuestChannelID    *string        `bun:"quest_channel_id"`
	RoleXPAssignments map[string]int `bun:"role_xp_assignments"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}
