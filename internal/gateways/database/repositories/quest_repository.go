package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

type QuestRepository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, quest *models.Quest) error
	Get(ctx context.Context, messageID string) (*models.Quest, error)
	Delete(ctx context.Context, messageID string) (bool, error)
	InsertCompletion(ctx context.Context, messageID, memberID string) (bool, error)
	ByGuild(ctx context.Context, guildID string) ([]*models.Quest, error)
}

type questRepository struct {
	*BaseRepository
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *questRepository) Create(ctx context.Context, quest *models.Quest) error {
	if quest.CreatedAt.IsZero() {
		quest.CreatedAt = time.Now()
	}
	_, err := r.conn(ctx).NewInsert().Model(quest).Exec(ctx)
	return r.HandleErrorWithID("create", "quest", quest.MessageID, err)
}

// Get loads the quest together with its completions.
func (r *questRepository) Get(ctx context.Context, messageID string) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.conn(ctx).NewSelect().
		Model(quest).
		Relation("Completions").
		Where("q.message_id = ?", messageID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "quest", messageID, err)
	}
	return quest, nil
}

// Delete removes the quest and every completion recorded for it. It reports
// whether a quest existed.
func (r *questRepository) Delete(ctx context.Context, messageID string) (bool, error) {
	var deleted bool
	err := r.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := r.conn(ctx).NewDelete().
			Model((*models.QuestCompletion)(nil)).
			Where("message_id = ?", messageID).
			Exec(ctx); err != nil {
			return err
		}

		res, err := r.conn(ctx).NewDelete().
			Model((*models.Quest)(nil)).
			Where("message_id = ?", messageID).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, r.HandleErrorWithID("delete", "quest", messageID, err)
	}
	return deleted, nil
}

// InsertCompletion adds memberID to the quest's completion set. It returns
// false when the member was already in it, and a NotFoundError when the quest
// was deleted.
func (r *questRepository) InsertCompletion(ctx context.Context, messageID, memberID string) (bool, error) {
	res, err := r.conn(ctx).NewInsert().
		Model(&models.QuestCompletion{
			MessageID:   messageID,
			MemberID:    memberID,
			CompletedAt: time.Now(),
		}).
		On("CONFLICT (message_id, member_id) DO NOTHING").
		Exec(ctx)
	if isForeignKeyViolation(err) {
		return false, &errs.NotFoundError{Entity: "quest", ID: messageID}
	}
	if err != nil {
		return false, r.HandleErrorWithID("insert_completion", "quest_completion", messageID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("insert_completion", "quest_completion", messageID, err)
	}
	return n == 1, nil
}

func (r *questRepository) ByGuild(ctx context.Context, guildID string) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.conn(ctx).NewSelect().
		Model(&quests).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("by_guild", "quest", err)
	}
	return quests, nil
}
