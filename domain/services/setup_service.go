package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoGameRoles is returned when the selector is set up with an empty mapping
	ErrNoGameRoles = errors.New("no game roles configured")
	// ErrInvalidMapping is returned for an empty emoji or unset role
	ErrInvalidMapping = errors.New("invalid game role mapping")
	// ErrInvalidLimit is returned for a negative selection limit
	ErrInvalidLimit = errors.New("selection limit must not be negative")
)

// SetupService backs the administrative commands that bind and unbind the
// tracked messages
type SetupService struct {
	store     *ConfigStore
	poster    interfaces.PromptPoster
	directory interfaces.GuildDirectory
}

// NewSetupService creates a setup service
func NewSetupService(store *ConfigStore, poster interfaces.PromptPoster, directory interfaces.GuildDirectory) *SetupService {
	return &SetupService{
		store:     store,
		poster:    poster,
		directory: directory,
	}
}

// SetupVerification posts a verification prompt in channelID, primes it with the
// verify reaction and starts tracking it
func (s *SetupService) SetupVerification(ctx context.Context, guildID, roleID, channelID int64) (int64, error) {
	if roleID <= 0 || channelID <= 0 {
		return 0, fmt.Errorf("role and channel are required")
	}

	current := s.store.GetVerificationConfig(guildID)
	current.RoleID = entities.ID(roleID)

	messageID, err := s.poster.PostVerificationPrompt(ctx, channelID, current)
	if err != nil {
		return 0, fmt.Errorf("failed to post verification prompt: %w", err)
	}

	if err := s.poster.AddReaction(ctx, channelID, messageID, current.Emoji); err != nil {
		return 0, fmt.Errorf("failed to add verification reaction: %w", err)
	}

	s.store.UpdateVerificationConfig(guildID, entities.VerificationPatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(messageID),
		TrackedChannelID: entities.ID(channelID),
		RoleID:           entities.ID(roleID),
	})

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"message_id": messageID,
		"role_id":    roleID,
	}).Info("Verification system set up")

	return messageID, nil
}

// DisableVerification stops tracking reactions; bindings are kept
func (s *SetupService) DisableVerification(guildID int64) *entities.VerificationConfig {
	cfg := s.store.UpdateVerificationConfig(guildID, entities.VerificationPatch{Enabled: entities.Bool(false)})
	log.WithField("guild_id", guildID).Info("Verification system disabled")
	return cfg
}

// SetWelcomeChannel sets the greeting channel. A zero channel clears it.
func (s *SetupService) SetWelcomeChannel(guildID, channelID int64) *entities.VerificationConfig {
	return s.store.UpdateVerificationConfig(guildID, entities.VerificationPatch{WelcomeChannelID: entities.ID(channelID)})
}

// VerificationStatus returns the current verification config
func (s *SetupService) VerificationStatus(guildID int64) *entities.VerificationConfig {
	return s.store.GetVerificationConfig(guildID)
}

// SetupGameRoles posts the selector listing in channelID, adds one reaction per
// mapped emoji and starts tracking it
func (s *SetupService) SetupGameRoles(ctx context.Context, guildID, channelID int64) (int64, error) {
	if channelID <= 0 {
		return 0, fmt.Errorf("channel is required")
	}

	current := s.store.GetGameRoleConfig(guildID)
	if len(current.EmojiToRole) == 0 {
		return 0, ErrNoGameRoles
	}

	for _, emoji := range SortedEmojis(current) {
		roleID := current.EmojiToRole[emoji]
		exists, err := s.directory.RoleExists(ctx, guildID, roleID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve game role: %w", err)
		}
		if !exists {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"emoji":    emoji,
				"role_id":  roleID,
			}).Warn("Skipping game role that no longer exists")
			delete(current.EmojiToRole, emoji)
		}
	}
	if len(current.EmojiToRole) == 0 {
		return 0, ErrNoGameRoles
	}

	emojis := SortedEmojis(current)
	roleNames := make(map[string]string, len(emojis))
	for _, emoji := range emojis {
		roleNames[emoji] = s.directory.RoleName(ctx, guildID, current.EmojiToRole[emoji])
	}

	messageID, err := s.poster.PostGameRolePrompt(ctx, channelID, current, roleNames)
	if err != nil {
		return 0, fmt.Errorf("failed to post game role prompt: %w", err)
	}

	for _, emoji := range emojis {
		if err := s.poster.AddReaction(ctx, channelID, messageID, emoji); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guild_id":   guildID,
				"message_id": messageID,
				"emoji":      emoji,
			}).Warn("Failed to add game role reaction")
		}
	}

	s.store.UpdateGameRoleConfig(guildID, entities.GameRolePatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(messageID),
		TrackedChannelID: entities.ID(channelID),
	})

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"channel_id": channelID,
		"message_id": messageID,
		"roles":      len(emojis),
	}).Info("Game role selection set up")

	return messageID, nil
}

// AddGameRoleMapping binds emoji to roleID, replacing any previous binding
func (s *SetupService) AddGameRoleMapping(guildID int64, emoji string, roleID int64) (*entities.GameRoleConfig, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || roleID <= 0 {
		return nil, ErrInvalidMapping
	}
	return s.store.AddGameRoleMapping(guildID, emoji, roleID), nil
}

// RemoveGameRoleMapping unbinds emoji. It reports false when nothing was bound.
func (s *SetupService) RemoveGameRoleMapping(guildID int64, emoji string) (*entities.GameRoleConfig, bool) {
	return s.store.RemoveGameRoleMapping(guildID, strings.TrimSpace(emoji))
}

// SetMaxSelections changes the selection limit
func (s *SetupService) SetMaxSelections(guildID int64, limit int) (*entities.GameRoleConfig, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	return s.store.UpdateGameRoleConfig(guildID, entities.GameRolePatch{MaxSelections: entities.Int(limit)}), nil
}

// DisableGameRoles stops tracking the selector; the mapping table is kept
func (s *SetupService) DisableGameRoles(guildID int64) *entities.GameRoleConfig {
	cfg := s.store.UpdateGameRoleConfig(guildID, entities.GameRolePatch{Enabled: entities.Bool(false)})
	log.WithField("guild_id", guildID).Info("Game role selection disabled")
	return cfg
}

// GameRoleStatus returns the current game role config
func (s *SetupService) GameRoleStatus(guildID int64) *entities.GameRoleConfig {
	return s.store.GetGameRoleConfig(guildID)
}

// SortedEmojis returns the mapped emojis in a stable order
func SortedEmojis(cfg *entities.GameRoleConfig) []string {
	emojis := make([]string, 0, len(cfg.EmojiToRole))
	for emoji := range cfg.EmojiToRole {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)
	return emojis
}
