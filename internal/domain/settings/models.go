package settings

import (
	"log/slog"
	"maps"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

// Settings is one guild's configuration. Values handed out by the Store are
// copies; mutate through the Store.
type Settings struct {
	GuildID         snowflake.ID
	QuestPingRoleID *snowflake.ID
	QuestChannelID  *snowflake.ID
	RoleXP          map[snowflake.ID]int
}

func (s Settings) Clone() Settings {
	out := s
	if s.QuestPingRoleID != nil {
		id := *s.QuestPingRoleID
		out.QuestPingRoleID = &id
	}
	if s.QuestChannelID != nil {
		id := *s.QuestChannelID
		out.QuestChannelID = &id
	}
	out.RoleXP = maps.Clone(s.RoleXP)
	if out.RoleXP == nil {
		out.RoleXP = map[snowflake.ID]int{}
	}
	return out
}

func empty(guildID snowflake.ID) Settings {
	return Settings{GuildID: guildID, RoleXP: map[snowflake.ID]int{}}
}

func fromModel(guildID snowflake.ID, m *models.GuildSettings) Settings {
	s := empty(guildID)
	s.QuestPingRoleID = parseOptional(m.QuestPingRoleID)
	s.QuestChannelID = parseOptional(m.QuestChannelID)
	for key, amount := range m.RoleXPAssignments {
		roleID, err := snowflake.Parse(key)
		if err != nil {
			slog.Warn("Skipping invalid role id in role XP assignments",
				slog.String("type", "db"),
				slog.String("guild_id", guildID.String()),
				slog.String("role_id", key),
			)
			continue
		}
		s.RoleXP[roleID] = amount
	}
	return s
}

func (s Settings) toModel() *models.GuildSettings {
	m := &models.GuildSettings{
		GuildID:           s.GuildID.String(),
		QuestPingRoleID:   formatOptional(s.QuestPingRoleID),
		QuestChannelID:    formatOptional(s.QuestChannelID),
		RoleXPAssignments: make(map[string]int, len(s.RoleXP)),
	}
	for roleID, amount := range s.RoleXP {
		m.RoleXPAssignments[roleID.String()] = amount
	}
	return m
}

func parseOptional(v *string) *snowflake.ID {
	if v == nil || *v == "" {
		return nil
	}
	id, err := snowflake.Parse(*v)
	if err != nil {
		return nil
	}
	return &id
}

func formatOptional(id *snowflake.ID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}
