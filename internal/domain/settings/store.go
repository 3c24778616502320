// Package settings caches per-guild configuration in front of the database.
package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
)

const DefaultCacheSize = 1024

// Store is the only path to guild settings. The cache is updated only after
// the database accepted a write, so a failed write leaves it untouched.
type Store struct {
	repo  Repository
	cache *lru.Cache
	group singleflight.Group

	// mu serializes writes and cache publication.
	mu sync.Mutex
}

func NewStore(repo Repository, cacheSize int) *Store {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New(cacheSize)
	return &Store{
		repo:  repo,
		cache: cache,
	}
}

// Load reads the guild's settings from the database into the cache.
// Concurrent loads of one guild share a single query.
func (s *Store) Load(ctx context.Context, guildID snowflake.ID) (Settings, error) {
	v, err, _ := s.group.Do(guildID.String(), func() (any, error) {
		m, err := s.repo.Find(ctx, guildID.String())
		var loaded Settings
		switch {
		case err == nil:
			loaded = fromModel(guildID, m)
		case errs.IsNotFound(err):
			loaded = empty(guildID)
		default:
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// A write that landed while we were reading wins.
		if cached, ok := s.cache.Get(guildID); ok {
			return cached.(Settings), nil
		}
		s.cache.Add(guildID, loaded)
		return loaded, nil
	})
	if err != nil {
		return Settings{}, err
	}
	return v.(Settings).Clone(), nil
}

// Get returns a copy of the guild's settings, loading them on a cache miss.
// Guilds that never saved anything get empty settings.
func (s *Store) Get(ctx context.Context, guildID snowflake.ID) (Settings, error) {
	if cached, ok := s.cache.Get(guildID); ok {
		return cached.(Settings).Clone(), nil
	}
	return s.Load(ctx, guildID)
}

// RoleXP returns the guild's custom role to XP assignments.
func (s *Store) RoleXP(ctx context.Context, guildID snowflake.ID) (map[snowflake.ID]int, error) {
	settings, err := s.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return settings.RoleXP, nil
}

// Save persists the cached settings of the guild as one whole-record write.
func (s *Store) Save(ctx context.Context, guildID snowflake.ID) error {
	return s.mutate(ctx, guildID, func(*Settings) {})
}

func (s *Store) SetQuestPingRole(ctx context.Context, guildID, roleID snowflake.ID) error {
	return s.mutate(ctx, guildID, func(settings *Settings) {
		settings.QuestPingRoleID = &roleID
	})
}

func (s *Store) SetQuestChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	return s.mutate(ctx, guildID, func(settings *Settings) {
		settings.QuestChannelID = &channelID
	})
}

// SetRoleXP assigns amount to roleID. An amount of zero removes the assignment.
func (s *Store) SetRoleXP(ctx context.Context, guildID, roleID snowflake.ID, amount int) error {
	return s.mutate(ctx, guildID, func(settings *Settings) {
		if amount == 0 {
			delete(settings.RoleXP, roleID)
			return
		}
		settings.RoleXP[roleID] = amount
	})
}

func (s *Store) mutate(ctx context.Context, guildID snowflake.ID, apply func(*Settings)) error {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read under the lock so concurrent writers build on each other.
	if cached, ok := s.cache.Get(guildID); ok {
		current = cached.(Settings).Clone()
	}

	next := current.Clone()
	apply(&next)

	start := time.Now()
	if err := s.repo.Upsert(ctx, next.toModel()); err != nil {
		slog.Error("Failed to save guild settings",
			slog.String("type", "db"),
			slog.String("guild_id", guildID.String()),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}

	s.cache.Add(guildID, next)
	return nil
}

// LoadAll warms the cache for the given guilds. Failures are logged and the
// affected guilds load lazily later.
func (s *Store) LoadAll(ctx context.Context, guildIDs []snowflake.ID) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	var (
		mu     sync.Mutex
		failed int
	)
	for _, guildID := range guildIDs {
		g.Go(func() error {
			if _, err := s.Load(gctx, guildID); err != nil {
				slog.Warn("Failed to load guild settings",
					slog.String("type", "db"),
					slog.String("guild_id", guildID.String()),
					slog.Any("error", err),
				)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("Guild settings loaded",
		slog.String("type", "db"),
		slog.Int("guilds", len(guildIDs)),
		slog.Int("failed", failed),
		slog.Duration("took", time.Since(start)),
	)
	return ctx.Err()
}
