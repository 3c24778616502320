package quests

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

type Quest struct {
	MessageID   snowflake.ID
	GuildID     snowflake.ID
	ChannelID   snowflake.ID
	Title       string
	Content     string
	CreatedBy   snowflake.ID
	CreatedAt   time.Time
	CompletedBy []snowflake.ID
}

type OutcomeKind int

const (
	QuestNotFound OutcomeKind = iota
	AlreadyCompleted
	Awarded
)

func (k OutcomeKind) String() string {
	switch k {
	case Awarded:
		return "awarded"
	case AlreadyCompleted:
		return "already_completed"
	default:
		return "quest_not_found"
	}
}

// Outcome of a completion signal. Amount and Adjustment are set only when
// Kind is Awarded.
type Outcome struct {
	Kind       OutcomeKind
	Quest      *Quest
	Amount     int
	Adjustment xp.Adjustment
}

func (q Quest) toModel() *models.Quest {
	m := &models.Quest{
		MessageID: q.MessageID.String(),
		GuildID:   q.GuildID.String(),
		ChannelID: q.ChannelID.String(),
		Title:     q.Title,
		Content:   q.Content,
		CreatedAt: q.CreatedAt,
	}
	if q.CreatedBy != 0 {
		m.CreatedBy = q.CreatedBy.String()
	}
	return m
}

func fromModel(m *models.Quest) (Quest, error) {
	var (
		q   Quest
		err error
	)
	if q.MessageID, err = snowflake.Parse(m.MessageID); err != nil {
		return Quest{}, fmt.Errorf("invalid message id %q: %w", m.MessageID, err)
	}
	if q.GuildID, err = snowflake.Parse(m.GuildID); err != nil {
		return Quest{}, fmt.Errorf("invalid guild id %q: %w", m.GuildID, err)
	}
	if q.ChannelID, err = snowflake.Parse(m.ChannelID); err != nil {
		return Quest{}, fmt.Errorf("invalid channel id %q: %w", m.ChannelID, err)
	}
	if m.CreatedBy != "" {
		q.CreatedBy, _ = snowflake.Parse(m.CreatedBy)
	}
	q.Title = m.Title
	q.Content = m.Content
	q.CreatedAt = m.CreatedAt

	for _, id := range m.CompletedBy() {
		memberID, err := snowflake.Parse(id)
		if err != nil {
			continue
		}
		q.CompletedBy = append(q.CompletedBy, memberID)
	}
	return q, nil
}
