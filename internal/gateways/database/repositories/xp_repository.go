package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

// XPChange is the outcome of an atomic XP adjustment.
type XPChange struct {
	NewXP    int
	OldLevel int
	NewLevel int
}

type XPRepository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrCreate(ctx context.Context, memberID, guildID string) (*models.XPRecord, error)
	Adjust(ctx context.Context, memberID, guildID string, delta int, levelFor func(xp int) int) (XPChange, error)
	Leaderboard(ctx context.Context, guildID string, limit int) ([]*models.XPRecord, error)
	AllByGuild(ctx context.Context, guildID string) ([]*models.XPRecord, error)
}

type xpRepository struct {
	*BaseRepository
}

func NewXPRepository(db *bun.DB) XPRepository {
	return &xpRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *xpRepository) ensure(ctx context.Context, memberID, guildID string) error {
	now := time.Now()
	_, err := r.conn(ctx).NewInsert().
		Model(&models.XPRecord{
			MemberID:  memberID,
			GuildID:   guildID,
			XP:        0,
			Level:     1,
			CreatedAt: now,
			UpdatedAt: now,
		}).
		On("CONFLICT (member_id, guild_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *xpRepository) find(ctx context.Context, memberID, guildID string) (*models.XPRecord, error) {
	record := new(models.XPRecord)
	err := r.conn(ctx).NewSelect().
		Model(record).
		Where("member_id = ? AND guild_id = ?", memberID, guildID).
		Scan(ctx)
	return record, err
}

// GetOrCreate returns the record, inserting a zeroed one first if needed.
func (r *xpRepository) GetOrCreate(ctx context.Context, memberID, guildID string) (*models.XPRecord, error) {
	var record *models.XPRecord
	err := r.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.ensure(ctx, memberID, guildID); err != nil {
			return err
		}
		var err error
		record, err = r.find(ctx, memberID, guildID)
		return err
	})
	if err != nil {
		return nil, r.HandleErrorWithID("get_or_create", "xp_record", memberID, err)
	}
	return record, nil
}

// Adjust applies delta with a floor of zero and rewrites the level projection.
// The conditional UPDATE runs first so the row is locked before it is read;
// concurrent adjustments of the same member serialize on that lock.
func (r *xpRepository) Adjust(ctx context.Context, memberID, guildID string, delta int, levelFor func(xp int) int) (XPChange, error) {
	var change XPChange
	err := r.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.ensure(ctx, memberID, guildID); err != nil {
			return err
		}

		_, err := r.conn(ctx).NewUpdate().
			Model((*models.XPRecord)(nil)).
			Set("xp = CASE WHEN xp + ? < 0 THEN 0 ELSE xp + ? END", delta, delta).
			Set("updated_at = ?", time.Now()).
			Where("member_id = ? AND guild_id = ?", memberID, guildID).
			Exec(ctx)
		if err != nil {
			return err
		}

		record, err := r.find(ctx, memberID, guildID)
		if err != nil {
			return err
		}

		change = XPChange{
			NewXP:    record.XP,
			OldLevel: record.Level,
			NewLevel: levelFor(record.XP),
		}
		if change.NewLevel == change.OldLevel {
			return nil
		}

		_, err = r.conn(ctx).NewUpdate().
			Model((*models.XPRecord)(nil)).
			Set("level = ?", change.NewLevel).
			Where("id = ?", record.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return XPChange{}, r.HandleErrorWithID("adjust", "xp_record", memberID, err)
	}
	return change, nil
}

// Leaderboard orders by XP, breaking ties by insertion order.
func (r *xpRepository) Leaderboard(ctx context.Context, guildID string, limit int) ([]*models.XPRecord, error) {
	var records []*models.XPRecord
	q := r.conn(ctx).NewSelect().
		Model(&records).
		Where("guild_id = ?", guildID).
		Order("xp DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, r.HandleError("leaderboard", "xp_record", err)
	}
	return records, nil
}

func (r *xpRepository) AllByGuild(ctx context.Context, guildID string) ([]*models.XPRecord, error) {
	return r.Leaderboard(ctx, guildID, 0)
}
