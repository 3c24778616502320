package quests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/repositories"
)

const (
	guildID   = snowflake.ID(10)
	channelID = snowflake.ID(20)
	messageID = snowflake.ID(100)
	memberA   = snowflake.ID(1)
	memberB   = snowflake.ID(2)
)

type fixture struct {
	tracker *Tracker
	ledger  *xp.Ledger
	events  *atomic.Int32
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitializeSchema(ctx))

	ledger := xp.NewLedger(repositories.NewXPRepository(db.BunDB()))
	events := &atomic.Int32{}
	ledger.Subscribe(xp.NotifierFunc(func(xp.LevelChanged) { events.Add(1) }))

	tracker := NewTracker(repositories.NewQuestRepository(db.BunDB()), ledger, 0)
	require.NoError(t, tracker.Create(ctx, Quest{
		MessageID: messageID,
		GuildID:   guildID,
		ChannelID: channelID,
		Title:     "Introduce yourself",
		Content:   "Say hello in #general",
	}))

	return fixture{tracker: tracker, ledger: ledger, events: events}
}

func TestTracker_RecordCompletionOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.tracker.RecordCompletion(ctx, messageID, memberA)
	require.NoError(t, err)
	assert.Equal(t, Awarded, outcome.Kind)
	assert.Equal(t, DefaultReward, outcome.Amount)
	assert.Equal(t, 50, outcome.Adjustment.NewXP)
	assert.Contains(t, outcome.Quest.CompletedBy, memberA)

	outcome, err = f.tracker.RecordCompletion(ctx, messageID, memberA)
	require.NoError(t, err)
	assert.Equal(t, AlreadyCompleted, outcome.Kind)

	record, err := f.ledger.Get(ctx, memberA, guildID)
	require.NoError(t, err)
	assert.Equal(t, 50, record.XP)

	quest, err := f.tracker.Get(ctx, messageID)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{memberA}, quest.CompletedBy)
}

func TestTracker_RecordCompletionConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		awarded atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.tracker.RecordCompletion(ctx, messageID, memberA)
			assert.NoError(t, err)
			if outcome.Kind == Awarded {
				awarded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), awarded.Load())
	record, err := f.ledger.Get(ctx, memberA, guildID)
	require.NoError(t, err)
	assert.Equal(t, 50, record.XP)
}

func TestTracker_PublishesLevelUpAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Adjust(ctx, memberB, guildID, 60)
	require.NoError(t, err)
	require.Equal(t, int32(0), f.events.Load())

	outcome, err := f.tracker.RecordCompletion(ctx, messageID, memberB)
	require.NoError(t, err)
	assert.True(t, outcome.Adjustment.LeveledUp)
	assert.Equal(t, 2, outcome.Adjustment.NewLevel)
	assert.Equal(t, int32(1), f.events.Load())
}

func TestTracker_UnknownAndRemovedQuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.tracker.RecordCompletion(ctx, 999, memberA)
	require.NoError(t, err)
	assert.Equal(t, QuestNotFound, outcome.Kind)

	require.NoError(t, f.tracker.Remove(ctx, messageID))
	outcome, err = f.tracker.RecordCompletion(ctx, messageID, memberA)
	require.NoError(t, err)
	assert.Equal(t, QuestNotFound, outcome.Kind)

	err = f.tracker.Remove(ctx, messageID)
	assert.True(t, errs.IsNotFound(err))

	record, err := f.ledger.Get(ctx, memberA, guildID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.XP)
}

type staleQuestRepo struct {
	Repository
	snapshot *models.Quest
}

func (r staleQuestRepo) Get(context.Context, string) (*models.Quest, error) {
	return r.snapshot, nil
}

func TestTracker_CompletionRacingRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snapshot, err := f.tracker.repo.Get(ctx, messageID.String())
	require.NoError(t, err)
	require.NoError(t, f.tracker.Remove(ctx, messageID))

	tracker := NewTracker(staleQuestRepo{Repository: f.tracker.repo, snapshot: snapshot}, f.ledger, 0)
	outcome, err := tracker.RecordCompletion(ctx, messageID, memberA)
	require.NoError(t, err)
	assert.Equal(t, QuestNotFound, outcome.Kind)

	record, err := f.ledger.Get(ctx, memberA, guildID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.XP)
	assert.Zero(t, f.events.Load())
}

type failingLedger struct {
	published int
}

func (l *failingLedger) AdjustTx(context.Context, snowflake.ID, snowflake.ID, int) (xp.Adjustment, error) {
	return xp.Adjustment{}, &errs.StorageError{Operation: "adjust", Entity: "xp_record", Err: assert.AnError}
}

func (l *failingLedger) Publish(xp.Adjustment) { l.published++ }

func TestTracker_LedgerFailureRollsBackCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	broken := &failingLedger{}
	tracker := NewTracker(f.tracker.repo, broken, 0)

	_, err := tracker.RecordCompletion(ctx, messageID, memberA)
	assert.True(t, errs.IsStorage(err))
	assert.Zero(t, broken.published)

	outcome, err := f.tracker.RecordCompletion(ctx, messageID, memberA)
	require.NoError(t, err)
	assert.Equal(t, Awarded, outcome.Kind)
}

func TestTracker_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.tracker.Create(ctx, Quest{MessageID: 1, GuildID: guildID, ChannelID: channelID, Title: " ", Content: "x"})
	assert.True(t, errs.IsValidation(err))

	err = f.tracker.Create(ctx, Quest{MessageID: 0, GuildID: guildID, ChannelID: channelID, Title: "t", Content: "x"})
	assert.True(t, errs.IsValidation(err))
}

func TestTracker_Active(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.Create(ctx, Quest{
		MessageID: 101,
		GuildID:   guildID,
		ChannelID: channelID,
		Title:     "Share a screenshot",
		Content:   "Post your setup",
	}))
	require.NoError(t, f.tracker.Create(ctx, Quest{
		MessageID: 200,
		GuildID:   99,
		ChannelID: channelID,
		Title:     "Elsewhere",
		Content:   "Other guild",
	}))

	active, err := f.tracker.Active(ctx, guildID)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
