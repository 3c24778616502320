// Package quests records reaction-gated quest completions and pays out their
// XP reward exactly once per member.
package quests

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
)

const (
	DefaultReward = 50

	MaxTitleLength   = 256
	MaxContentLength = 4000
)

type Tracker struct {
	repo   Repository
	ledger Ledger
	reward int
}

func NewTracker(repo Repository, ledger Ledger, reward int) *Tracker {
	if reward <= 0 {
		reward = DefaultReward
	}
	return &Tracker{
		repo:   repo,
		ledger: ledger,
		reward: reward,
	}
}

// Reward is the XP paid per completion.
func (t *Tracker) Reward() int {
	return t.reward
}

// Validate checks a quest's title and content before it is announced.
func Validate(title, content string) error {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	switch {
	case title == "":
		return errs.Invalid("title", "must not be empty")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return errs.Invalid("title", "must be at most %d characters", MaxTitleLength)
	case content == "":
		return errs.Invalid("content", "must not be empty")
	case utf8.RuneCountInString(content) > MaxContentLength:
		return errs.Invalid("content", "must be at most %d characters", MaxContentLength)
	}
	return nil
}

// Create stores a freshly announced quest with an empty completion set.
func (t *Tracker) Create(ctx context.Context, quest Quest) error {
	if err := Validate(quest.Title, quest.Content); err != nil {
		return err
	}
	if quest.MessageID == 0 || quest.GuildID == 0 || quest.ChannelID == 0 {
		return errs.Invalid("quest", "message, guild and channel are required")
	}
	if quest.CreatedAt.IsZero() {
		quest.CreatedAt = time.Now()
	}
	quest.CompletedBy = nil
	return t.repo.Create(ctx, quest.toModel())
}

// Remove deletes the quest and its completion set.
func (t *Tracker) Remove(ctx context.Context, messageID snowflake.ID) error {
	deleted, err := t.repo.Delete(ctx, messageID.String())
	if err != nil {
		return err
	}
	if !deleted {
		return &errs.NotFoundError{Entity: "quest", ID: messageID}
	}
	return nil
}

// Get returns the quest announced by messageID.
func (t *Tracker) Get(ctx context.Context, messageID snowflake.ID) (Quest, error) {
	m, err := t.repo.Get(ctx, messageID.String())
	if err != nil {
		return Quest{}, err
	}
	return fromModel(m)
}

// RecordCompletion marks memberID as having completed the quest and awards
// the reward. The completion insert and the XP adjustment commit together;
// the level change is published after the commit.
func (t *Tracker) RecordCompletion(ctx context.Context, messageID, memberID snowflake.ID) (Outcome, error) {
	var outcome Outcome
	err := t.repo.RunInTx(ctx, func(ctx context.Context) error {
		m, err := t.repo.Get(ctx, messageID.String())
		if errs.IsNotFound(err) {
			outcome = Outcome{Kind: QuestNotFound}
			return nil
		}
		if err != nil {
			return err
		}
		quest, err := fromModel(m)
		if err != nil {
			return err
		}

		inserted, err := t.repo.InsertCompletion(ctx, messageID.String(), memberID.String())
		if err != nil {
			return err
		}
		if !inserted {
			outcome = Outcome{Kind: AlreadyCompleted, Quest: &quest}
			return nil
		}

		adj, err := t.ledger.AdjustTx(ctx, memberID, quest.GuildID, t.reward)
		if err != nil {
			return err
		}
		quest.CompletedBy = append(quest.CompletedBy, memberID)
		outcome = Outcome{Kind: Awarded, Quest: &quest, Amount: t.reward, Adjustment: adj}
		return nil
	})
	if errs.IsNotFound(err) {
		return Outcome{Kind: QuestNotFound}, nil
	}
	if err != nil {
		slog.Error("Failed to record quest completion",
			slog.String("type", "db"),
			slog.String("message_id", messageID.String()),
			slog.String("member_id", memberID.String()),
			slog.Any("error", err),
		)
		return Outcome{}, err
	}

	if outcome.Kind == Awarded {
		t.ledger.Publish(outcome.Adjustment)
	}
	return outcome, nil
}

// Active lists the guild's quests, newest first.
func (t *Tracker) Active(ctx context.Context, guildID snowflake.ID) ([]Quest, error) {
	ms, err := t.repo.ByGuild(ctx, guildID.String())
	if err != nil {
		return nil, err
	}
	out := make([]Quest, 0, len(ms))
	for _, m := range ms {
		q, err := fromModel(m)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}
