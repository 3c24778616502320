package xp

import (
	"context"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/repositories"
)

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

type Repository interface {
	GetOrCreate(ctx context.Context, memberID, guildID string) (*models.XPRecord, error)
	Adjust(ctx context.Context, memberID, guildID string, delta int, levelFor func(xp int) int) (repositories.XPChange, error)
	Leaderboard(ctx context.Context, guildID string, limit int) ([]*models.XPRecord, error)
	AllByGuild(ctx context.Context, guildID string) ([]*models.XPRecord, error)
}
