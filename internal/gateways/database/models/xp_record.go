package models

import (
	"time"

	"github.com/uptrace/bun"
)

// XPRecord is the ledger row of one member in one guild. Level is a cached
// projection of XP and is only written together with it.
type XPRecord struct {
	bun.BaseModel `bun:"table:xp_records,alias:xr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	MemberID  string    `bun:"member_id,notnull,unique:xp_records_member_guild"`
	GuildID   string    `bun:"guild_id,notnull,unique:xp_records_member_guild"`
	XP        int       `bun:"xp,notnull,default:0"`
	Level     int       `bun:"level,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
