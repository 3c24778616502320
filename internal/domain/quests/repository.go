package quests

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, quest *models.Quest) error
	Get(ctx context.Context, messageID string) (*models.Quest, error)
	Delete(ctx context.Context, messageID string) (bool, error)
	InsertCompletion(ctx context.Context, messageID, memberID string) (bool, error)
	ByGuild(ctx context.Context, guildID string) ([]*models.Quest, error)
}

// Ledger is the part of xp.Ledger the tracker awards through.
type Ledger interface {
	AdjustTx(ctx context.Context, memberID, guildID snowflake.ID, delta int) (xp.Adjustment, error)
	Publish(adj xp.Adjustment)
}
