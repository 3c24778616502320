package settings

import (
	"context"

	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

type Repository interface {
	Find(ctx context.Context, guildID string) (*models.GuildSettings, error)
	Upsert(ctx context.Context, settings *models.GuildSettings) error
}
