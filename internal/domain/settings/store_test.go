package settings

import (
	"context"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/settings/mock"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/repositories"
)

const guildID = snowflake.ID(10)

func ptr[T any](v T) *T { return &v }

func notFound() error {
	return &errs.NotFoundError{Entity: "guild_settings", ID: "10"}
}

func TestStore_GetDefaultsToEmpty(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(nil, notFound()).Times(1)

	store := NewStore(repo, 0)
	for i := 0; i < 3; i++ {
		got, err := store.Get(context.Background(), guildID)
		require.NoError(t, err)
		assert.Equal(t, guildID, got.GuildID)
		assert.Nil(t, got.QuestPingRoleID)
		assert.Nil(t, got.QuestChannelID)
		assert.Empty(t, got.RoleXP)
	}
}

func TestStore_GetLoadsStoredSettings(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(&models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   ptr("42"),
		RoleXPAssignments: map[string]int{"7": 30, "bogus": 1},
	}, nil)

	got, err := NewStore(repo, 0).Get(context.Background(), guildID)
	require.NoError(t, err)
	require.NotNil(t, got.QuestPingRoleID)
	assert.Equal(t, snowflake.ID(42), *got.QuestPingRoleID)
	assert.Equal(t, map[snowflake.ID]int{7: 30}, got.RoleXP)
}

func TestStore_GetReturnsCopies(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(nil, notFound())

	store := NewStore(repo, 0)
	got, err := store.Get(context.Background(), guildID)
	require.NoError(t, err)
	got.RoleXP[1] = 100

	again, err := store.Get(context.Background(), guildID)
	require.NoError(t, err)
	assert.Empty(t, again.RoleXP)
}

func TestStore_FailedWriteLeavesCacheUntouched(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(nil, notFound())
	storageErr := &errs.StorageError{Operation: "upsert", Entity: "guild_settings", Err: assert.AnError}
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(storageErr)

	store := NewStore(repo, 0)
	err := store.SetQuestChannel(context.Background(), guildID, 99)
	assert.True(t, errs.IsStorage(err))

	got, err := store.Get(context.Background(), guildID)
	require.NoError(t, err)
	assert.Nil(t, got.QuestChannelID)
}

func TestStore_WritesWholeRecord(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(&models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   ptr("42"),
		RoleXPAssignments: map[string]int{"7": 30},
	}, nil)
	repo.EXPECT().Upsert(gomock.Any(), &models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   ptr("42"),
		QuestChannelID:    ptr("99"),
		RoleXPAssignments: map[string]int{"7": 30},
	}).Return(nil)

	store := NewStore(repo, 0)
	require.NoError(t, store.SetQuestChannel(context.Background(), guildID, 99))

	got, err := store.Get(context.Background(), guildID)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(99), *got.QuestChannelID)
	assert.Equal(t, snowflake.ID(42), *got.QuestPingRoleID)
}

func TestStore_Save(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().Find(gomock.Any(), "10").Return(&models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   ptr("42"),
		QuestChannelID:    ptr("99"),
		RoleXPAssignments: map[string]int{"7": 30, "8": 5},
	}, nil)
	repo.EXPECT().Upsert(gomock.Any(), &models.GuildSettings{
		GuildID:           "10",
		QuestPingRoleID:   ptr("42"),
		QuestChannelID:    ptr("99"),
		RoleXPAssignments: map[string]int{"7": 30, "8": 5},
	}).Return(nil).Times(1)

	require.NoError(t, NewStore(repo, 0).Save(context.Background(), guildID))
}

func TestStore_SaveCreatesMissingRecord(t *testing.T) {
	store, repo := newSQLiteStore(t)
	ctx := context.Background()

	_, err := repo.Find(ctx, "10")
	require.True(t, errs.IsNotFound(err))

	require.NoError(t, store.Save(ctx, guildID))

	saved, err := repo.Find(ctx, "10")
	require.NoError(t, err)
	assert.Nil(t, saved.QuestPingRoleID)
	assert.Nil(t, saved.QuestChannelID)
	assert.Empty(t, saved.RoleXPAssignments)
}

func newSQLiteStore(t *testing.T) (*Store, repositories.SettingsRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(ctx))

	repo := repositories.NewSettingsRepository(db.BunDB())
	return NewStore(repo, 0), repo
}

func TestStore_PersistsMutations(t *testing.T) {
	ctx := context.Background()
	store, repo := newSQLiteStore(t)

	require.NoError(t, store.SetQuestPingRole(ctx, guildID, 42))
	require.NoError(t, store.SetQuestChannel(ctx, guildID, 99))
	require.NoError(t, store.SetRoleXP(ctx, guildID, 7, 30))
	require.NoError(t, store.SetRoleXP(ctx, guildID, 8, 15))
	require.NoError(t, store.SetRoleXP(ctx, guildID, 8, 0))

	fresh := NewStore(repo, 0)
	got, err := fresh.Get(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(42), *got.QuestPingRoleID)
	assert.Equal(t, snowflake.ID(99), *got.QuestChannelID)
	assert.Equal(t, map[snowflake.ID]int{7: 30}, got.RoleXP)

	roleXP, err := fresh.RoleXP(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, 30, roleXP[7])
}

func TestStore_ConcurrentSetRoleXP(t *testing.T) {
	ctx := context.Background()
	store, repo := newSQLiteStore(t)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SetRoleXP(ctx, guildID, snowflake.ID(i), i*10))
		}()
	}
	wg.Wait()

	got, err := NewStore(repo, 0).Get(ctx, guildID)
	require.NoError(t, err)
	assert.Len(t, got.RoleXP, 10)
}

func TestStore_LoadAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	repo.EXPECT().Find(gomock.Any(), "1").Return(nil, notFound())
	repo.EXPECT().Find(gomock.Any(), "2").Return(&models.GuildSettings{GuildID: "2", QuestChannelID: ptr("5")}, nil)
	repo.EXPECT().Find(gomock.Any(), "3").Return(nil, &errs.StorageError{Operation: "find", Entity: "guild_settings", Err: assert.AnError})

	store := NewStore(repo, 0)
	require.NoError(t, store.LoadAll(context.Background(), []snowflake.ID{1, 2, 3}))

	got, err := store.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(5), *got.QuestChannelID)

	repo.EXPECT().Find(gomock.Any(), "3").Return(nil, notFound())
	_, err = store.Get(context.Background(), 3)
	require.NoError(t, err)
}
