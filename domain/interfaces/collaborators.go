package interfaces

import (
	"context"
	"errors"

	"rolekeeper/domain/entities"
)

var (
	// ErrMemberNotFound is returned when the member left the guild or cannot be resolved
	ErrMemberNotFound = errors.New("member not found")
	// ErrRoleNotFound is returned when the role was deleted from the guild
	ErrRoleNotFound = errors.New("role not found")
	// ErrCircuitOpen is returned when the platform client is failing fast
	ErrCircuitOpen = errors.New("platform circuit open")
)

// RoleMutator is the platform boundary for role and reaction state
type RoleMutator interface {
	// MemberRoles returns the role IDs the member currently holds, read fresh from the platform
	MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error)

	// HasRole reports whether the member currently holds roleID
	HasRole(ctx context.Context, guildID, memberID, roleID int64) (bool, error)

	// AddRole grants roleID to the member
	AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error

	// RemoveRole revokes roleID from the member
	RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error

	// RemoveReaction retracts the member's emoji reaction from a message
	RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error
}

// GuildDirectory resolves identities and display names
type GuildDirectory interface {
	// MemberExists reports whether the member is still part of the guild
	MemberExists(ctx context.Context, guildID, memberID int64) (bool, error)

	// GuildName returns the display name of the guild, or a fallback
	GuildName(ctx context.Context, guildID int64) string

	// RoleName returns the display name of the role, or a fallback
	RoleName(ctx context.Context, guildID, roleID int64) string

	// RoleExists reports whether the role is still defined in the guild
	RoleExists(ctx context.Context, guildID, roleID int64) (bool, error)
}

// Notifier delivers best-effort notification requests. Implementations must not
// block on delivery; errors only describe failure to enqueue.
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}

// PromptPoster posts the messages members react to
type PromptPoster interface {
	// PostVerificationPrompt posts the verification prompt and returns its message ID
	PostVerificationPrompt(ctx context.Context, channelID int64, cfg *entities.VerificationConfig) (int64, error)

	// PostGameRolePrompt posts the selector listing and returns its message ID
	PostGameRolePrompt(ctx context.Context, channelID int64, cfg *entities.GameRoleConfig, roleNames map[string]string) (int64, error)

	// AddReaction adds the bot's own reaction to a message
	AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error
}
