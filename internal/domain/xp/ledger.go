// Package xp owns the XP ledger and the total-XP projection used for
// rankings and profiles.
package xp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
)

// Notifier receives level transitions. Notify must not block.
type Notifier interface {
	Notify(event LevelChanged)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(event LevelChanged)

func (f NotifierFunc) Notify(event LevelChanged) { f(event) }

// Ledger is the only writer of XP records.
type Ledger struct {
	repo Repository

	mu       sync.RWMutex
	notifier Notifier
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Subscribe sets the receiver of LevelChanged events, replacing any previous one.
func (l *Ledger) Subscribe(n Notifier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier = n
}

// Get returns the member's record, creating a zeroed one on first access.
func (l *Ledger) Get(ctx context.Context, memberID, guildID snowflake.ID) (Record, error) {
	m, err := l.repo.GetOrCreate(ctx, memberID.String(), guildID.String())
	if err != nil {
		return Record{}, err
	}
	return recordFromModel(m)
}

// Adjust applies delta, floor-clamping XP at zero, and publishes a
// LevelChanged event when the level moved.
func (l *Ledger) Adjust(ctx context.Context, memberID, guildID snowflake.ID, delta int) (Adjustment, error) {
	adj, err := l.AdjustTx(ctx, memberID, guildID, delta)
	if err != nil {
		return adj, err
	}
	l.Publish(adj)
	return adj, nil
}

// AdjustTx is Adjust without publishing. It joins a transaction carried by
// ctx; the caller publishes with Publish once that transaction committed.
func (l *Ledger) AdjustTx(ctx context.Context, memberID, guildID snowflake.ID, delta int) (Adjustment, error) {
	change, err := l.repo.Adjust(ctx, memberID.String(), guildID.String(), delta, leveling.LevelFor)
	if err != nil {
		return Adjustment{}, err
	}
	return Adjustment{
		MemberID:  memberID,
		GuildID:   guildID,
		Delta:     delta,
		NewXP:     change.NewXP,
		NewLevel:  change.NewLevel,
		OldLevel:  change.OldLevel,
		LeveledUp: change.NewLevel != change.OldLevel,
	}, nil
}

// Publish hands a level transition to the subscriber. Adjustments that did
// not change the level are ignored.
func (l *Ledger) Publish(adj Adjustment) {
	if !adj.LeveledUp {
		return
	}

	l.mu.RLock()
	n := l.notifier
	l.mu.RUnlock()

	if n == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Level change subscriber panicked",
				slog.String("type", "sys"),
				slog.String("member_id", adj.MemberID.String()),
				slog.Any("panic", r),
			)
		}
	}()
	n.Notify(adj.Event())
}

// Leaderboard returns the top records by XP, ties in insertion order.
func (l *Ledger) Leaderboard(ctx context.Context, guildID snowflake.ID, limit int) ([]Record, error) {
	ms, err := l.repo.Leaderboard(ctx, guildID.String(), limit)
	if err != nil {
		return nil, err
	}
	return recordsFromModels(ms)
}

// All returns every record of the guild.
func (l *Ledger) All(ctx context.Context, guildID snowflake.ID) ([]Record, error) {
	ms, err := l.repo.AllByGuild(ctx, guildID.String())
	if err != nil {
		return nil, err
	}
	return recordsFromModels(ms)
}
