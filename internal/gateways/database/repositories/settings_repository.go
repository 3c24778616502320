package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

type SettingsRepository interface {
	Find(ctx context.Context, guildID string) (*models.GuildSettings, error)
	Upsert(ctx context.Context, settings *models.GuildSettings) error
}

type settingsRepository struct {
	*BaseRepository
}

func NewSettingsRepository(db *bun.DB) SettingsRepository {
	return &settingsRepository{BaseRepository: NewBaseRepository(db)}
}

// Find returns a NotFoundError when the guild has never saved settings.
func (r *settingsRepository) Find(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	settings := new(models.GuildSettings)
	err := r.conn(ctx).NewSelect().
		Model(settings).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("find", "guild_settings", guildID, err)
	}
	return settings, nil
}

// Upsert writes the whole record.
func (r *settingsRepository) Upsert(ctx context.Context, settings *models.GuildSettings) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	settings.UpdatedAt = time.Now()
	if settings.RoleXPAssignments == nil {
		settings.RoleXPAssignments = map[string]int{}
	}
	_, err := r.conn(ctx).NewInsert().
		Model(settings).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("quest_ping_role_id = EXCLUDED.quest_ping_role_id").
		Set("quest_channel_id = EXCLUDED.quest_channel_id").
		Set("role_xp_assignments = EXCLUDED.role_xp_assignments").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return r.HandleErrorWithID("upsert", "guild_settings", settings.GuildID, err)
}
