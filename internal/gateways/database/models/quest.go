package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Quest struct {
	bun.BaseModel `bun:"table:quests,alias:q"`

	MessageID string    `bun:"message_id,pk"`
	GuildID   string    `bun:"guild_id,notnull"`
	ChannelID string    `bun:"channel_id,notnull"`
	Title     string    `bun:"title,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedBy string    `bun:"created_by"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Completions []*QuestCompletion `bun:"rel:has-many,join:message_id=message_id"`
}

// QuestCompletion is one member's completion of a quest. The composite key is
// what makes a completion count once.
type QuestCompletion struct {
	bun.BaseModel `bun:"table:quest_completions,alias:qc"`

	MessageID   string    `bun:"message_id,pk"`
	MemberID    string    `bun:"member_id,pk"`
	CompletedAt time.Time `bun:"completed_at,notnull,default:current_timestamp"`
}

// CompletedBy returns the member IDs that completed the quest.
func (q *Quest) CompletedBy() []string {
	ids := make([]string, 0, len(q.Completions))
	for _, c := range q.Completions {
		ids = append(ids, c.MemberID)
	}
	return ids
}
