package repositories_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/repositories"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(ctx))

	return db.BunDB()
}

func TestXPRepository_GetOrCreate(t *testing.T) {
	repo := repositories.NewXPRepository(newTestDB(t))
	ctx := context.Background()

	record, err := repo.GetOrCreate(ctx, "1", "10")
	require.NoError(t, err)
	assert.Equal(t, 0, record.XP)
	assert.Equal(t, 1, record.Level)

	again, err := repo.GetOrCreate(ctx, "1", "10")
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
}

func TestXPRepository_Adjust(t *testing.T) {
	repo := repositories.NewXPRepository(newTestDB(t))
	ctx := context.Background()

	change, err := repo.Adjust(ctx, "1", "10", 150, leveling.LevelFor)
	require.NoError(t, err)
	assert.Equal(t, repositories.XPChange{NewXP: 150, OldLevel: 1, NewLevel: 2}, change)

	change, err = repo.Adjust(ctx, "1", "10", -1000, leveling.LevelFor)
	require.NoError(t, err)
	assert.Equal(t, repositories.XPChange{NewXP: 0, OldLevel: 2, NewLevel: 1}, change)

	record, err := repo.GetOrCreate(ctx, "1", "10")
	require.NoError(t, err)
	assert.Equal(t, 0, record.XP)
	assert.Equal(t, 1, record.Level)
}

func TestXPRepository_AdjustConcurrent(t *testing.T) {
	repo := repositories.NewXPRepository(newTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Adjust(ctx, "1", "10", 50, leveling.LevelFor)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := repo.GetOrCreate(ctx, "1", "10")
	require.NoError(t, err)
	assert.Equal(t, 1000, record.XP)
	assert.Equal(t, leveling.LevelFor(1000), record.Level)
}

func TestXPRepository_Leaderboard(t *testing.T) {
	repo := repositories.NewXPRepository(newTestDB(t))
	ctx := context.Background()

	for _, a := range []struct {
		member string
		xp     int
	}{{"a", 100}, {"b", 300}, {"c", 100}, {"d", 50}} {
		_, err := repo.Adjust(ctx, a.member, "10", a.xp, leveling.LevelFor)
		require.NoError(t, err)
	}
	_, err := repo.Adjust(ctx, "z", "other", 5000, leveling.LevelFor)
	require.NoError(t, err)

	top, err := repo.Leaderboard(ctx, "10", 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].MemberID)
	assert.Equal(t, "a", top[1].MemberID)
	assert.Equal(t, "c", top[2].MemberID)

	all, err := repo.AllByGuild(ctx, "10")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestQuestRepository_Completions(t *testing.T) {
	repo := repositories.NewQuestRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Quest{
		MessageID: "100",
		GuildID:   "10",
		ChannelID: "5",
		Title:     "Say hi",
		Content:   "Post in general",
	}))

	inserted, err := repo.InsertCompletion(ctx, "100", "1")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertCompletion(ctx, "100", "1")
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.InsertCompletion(ctx, "100", "2")
	require.NoError(t, err)
	assert.True(t, inserted)

	quest, err := repo.Get(ctx, "100")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, quest.CompletedBy())

	quests, err := repo.ByGuild(ctx, "10")
	require.NoError(t, err)
	assert.Len(t, quests, 1)
}

func TestQuestRepository_Delete(t *testing.T) {
	repo := repositories.NewQuestRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Quest{MessageID: "100", GuildID: "10", ChannelID: "5", Title: "t", Content: "c"}))
	_, err := repo.InsertCompletion(ctx, "100", "1")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "100")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.Get(ctx, "100")
	assert.True(t, errs.IsNotFound(err))

	deleted, err = repo.Delete(ctx, "100")
	require.NoError(t, err)
	assert.False(t, deleted)

	// A re-posted quest with the same id starts with an empty set.
	require.NoError(t, repo.Create(ctx, &models.Quest{MessageID: "100", GuildID: "10", ChannelID: "5", Title: "t", Content: "c"}))
	inserted, err := repo.InsertCompletion(ctx, "100", "1")
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestQuestRepository_CompletionNeedsQuest(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewQuestRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertCompletion(ctx, "404", "1")
	assert.True(t, errs.IsNotFound(err))
	assert.False(t, inserted)

	require.NoError(t, repo.Create(ctx, &models.Quest{MessageID: "100", GuildID: "10", ChannelID: "5", Title: "t", Content: "c"}))
	_, err = repo.InsertCompletion(ctx, "100", "1")
	require.NoError(t, err)

	// Deleting the quest row alone cascades to its completions.
	_, err = db.NewDelete().Model((*models.Quest)(nil)).Where("message_id = ?", "100").Exec(ctx)
	require.NoError(t, err)
	count, err := db.NewSelect().Model((*models.QuestCompletion)(nil)).Where("message_id = ?", "100").Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunInTx_RollsBack(t *testing.T) {
	db := newTestDB(t)
	quests := repositories.NewQuestRepository(db)
	xp := repositories.NewXPRepository(db)
	ctx := context.Background()

	require.NoError(t, quests.Create(ctx, &models.Quest{MessageID: "100", GuildID: "10", ChannelID: "5", Title: "t", Content: "c"}))

	err := quests.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := quests.InsertCompletion(ctx, "100", "1"); err != nil {
			return err
		}
		if _, err := xp.Adjust(ctx, "1", "10", 50, leveling.LevelFor); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	quest, err := quests.Get(ctx, "100")
	require.NoError(t, err)
	assert.Empty(t, quest.CompletedBy())

	record, err := xp.GetOrCreate(ctx, "1", "10")
	require.NoError(t, err)
	assert.Equal(t, 0, record.XP)
}

func TestSettingsRepository(t *testing.T) {
	repo := repositories.NewSettingsRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Find(ctx, "10")
	assert.True(t, errs.IsNotFound(err))

	role := "42"
	require.NoError(t, repo.Upsert(ctx, &models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   &role,
		RoleXPAssignments: map[string]int{"7": 250},
	}))

	got, err := repo.Find(ctx, "10")
	require.NoError(t, err)
	require.NotNil(t, got.QuestPingRoleID)
	assert.Equal(t, "42", *got.QuestPingRoleID)
	assert.Nil(t, got.QuestChannelID)
	assert.Equal(t, map[string]int{"7": 250}, got.RoleXPAssignments)

	channel := "99"
	require.NoError(t, repo.Upsert(ctx, &models.GuildSettings{
		GuildID:           "10",
		QuestChannelID:    &channel,
		RoleXPAssignments: map[string]int{"7": 250, "8": 10},
	}))

	got, err = repo.Find(ctx, "10")
	require.NoError(t, err)
	assert.Nil(t, got.QuestPingRoleID)
	require.NotNil(t, got.QuestChannelID)
	assert.Equal(t, "99", *got.QuestChannelID)
	assert.Len(t, got.RoleXPAssignments, 2)
}
