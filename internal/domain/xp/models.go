package xp

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

// Record is a member's ledger entry in one guild.
type Record struct {
	MemberID snowflake.ID
	GuildID  snowflake.ID
	XP       int
	Level    int
}

// Adjustment is the result of Ledger.Adjust.
type Adjustment struct {
	MemberID  snowflake.ID
	GuildID   snowflake.ID
	Delta     int
	NewXP     int
	NewLevel  int
	OldLevel  int
	LeveledUp bool
}

// Event returns the level transition carried by a.
func (a Adjustment) Event() LevelChanged {
	return LevelChanged{
		GuildID:  a.GuildID,
		MemberID: a.MemberID,
		OldLevel: a.OldLevel,
		NewLevel: a.NewLevel,
	}
}

// LevelChanged is emitted after an adjustment moved a member across a tier.
type LevelChanged struct {
	GuildID  snowflake.ID
	MemberID snowflake.ID
	OldLevel int
	NewLevel int
}

func recordFromModel(m *models.XPRecord) (Record, error) {
	memberID, err := snowflake.Parse(m.MemberID)
	if err != nil {
		return Record{}, fmt.Errorf("invalid member id %q: %w", m.MemberID, err)
	}
	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return Record{}, fmt.Errorf("invalid guild id %q: %w", m.GuildID, err)
	}
	return Record{
		MemberID: memberID,
		GuildID:  guildID,
		XP:       m.XP,
		Level:    m.Level,
	}, nil
}

func recordsFromModels(ms []*models.XPRecord) ([]Record, error) {
	records := make([]Record, 0, len(ms))
	for _, m := range ms {
		r, err := recordFromModel(m)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
