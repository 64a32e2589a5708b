package testutil

import "rolekeeper/domain/entities"

// CreateTestVerificationConfig returns an enabled verification config bound to messageID
func CreateTestVerificationConfig(guildID, messageID, roleID int64) *entities.VerificationConfig {
	cfg := entities.NewVerificationConfig(guildID)
	cfg.Enabled = true
	cfg.TrackedMessageID = entities.ID(messageID)
	cfg.TrackedChannelID = entities.ID(messageID + 1)
	cfg.RoleID = entities.ID(roleID)
	return cfg
}

// CreateTestGameRoleConfig returns an enabled game role config with the given mapping
func CreateTestGameRoleConfig(guildID, messageID int64, maxSelections int, mapping map[string]int64) *entities.GameRoleConfig {
	cfg := entities.NewGameRoleConfig(guildID, maxSelections)
	cfg.Enabled = true
	cfg.TrackedMessageID = entities.ID(messageID)
	cfg.TrackedChannelID = entities.ID(messageID + 1)
	for emoji, roleID := range mapping {
		cfg.EmojiToRole[emoji] = roleID
	}
	return cfg
}
