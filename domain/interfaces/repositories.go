package interfaces

import (
	"context"

	"rolekeeper/domain/entities"
)

// GuildConfigSnapshot is everything persisted for one guild
type GuildConfigSnapshot struct {
	Verification *entities.VerificationConfig
	GameRoles    *entities.GameRoleConfig
}

// GuildConfigRepository persists role configuration outside process memory
type GuildConfigRepository interface {
	// LoadAll returns the stored configuration of every guild
	LoadAll(ctx context.Context) ([]GuildConfigSnapshot, error)

	// SaveVerificationConfig upserts a verification config
	SaveVerificationConfig(ctx context.Context, cfg *entities.VerificationConfig) error

	// SaveGameRoleConfig upserts a game role config and replaces its mapping table
	SaveGameRoleConfig(ctx context.Context, cfg *entities.GameRoleConfig) error
}
